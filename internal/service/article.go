// Package service holds ArticleService, the only reader and writer of the
// article collection. It keeps the cache consistent with the store: reads
// fill the cache lazily, every successful mutation evicts all article
// namespaces after the store write has committed.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AaronDeluna/new-york-times/internal/cache"
	"github.com/AaronDeluna/new-york-times/internal/model"
	"github.com/AaronDeluna/new-york-times/internal/store"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// PageSize is the number of articles per listing page.
const PageSize = 10

var (
	// ErrNotFound is returned when the referenced article does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidArgument is returned for malformed input; no storage access happens.
	ErrInvalidArgument = errors.New("invalid argument")
)

type ArticleService struct {
	store  store.Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewArticleService wires the service to its store and cache. A nil cache
// disables caching. Cache failures are logged and bypassed.
func NewArticleService(st store.Store, c cache.Cache, logger *zap.Logger) *ArticleService {
	if c == nil {
		c = cache.NoOp{}
	}
	return &ArticleService{
		store:  st,
		cache:  cache.NewFailOpen(c, logger),
		logger: logger,
	}
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s %v", ErrInvalidArgument, field, err)
}

// Create stores a new article. A zero Number is assigned by the store.
func (s *ArticleService) Create(ctx context.Context, article model.Article) (model.Article, error) {
	if err := validation.Validate(article.Number, validation.Min(0)); err != nil {
		return model.Article{}, invalid("number", err)
	}
	if err := s.store.Put(ctx, &article); err != nil {
		return model.Article{}, fmt.Errorf("create article: %w", err)
	}
	s.evictAll()

	s.logger.Info("Article created", zap.Int("number", article.Number))
	return article, nil
}

func (s *ArticleService) Read(ctx context.Context, number int) (model.Article, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.ArticleByID, cache.Key(number), func(ctx context.Context) (model.Article, error) {
		return s.load(ctx, number)
	})
}

func (s *ArticleService) ReadText(ctx context.Context, number int) (string, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.ArticleText, cache.Key(number), func(ctx context.Context) (string, error) {
		article, err := s.Read(ctx, number)
		return article.Text, err
	})
}

func (s *ArticleService) ReadAuthor(ctx context.Context, number int) (string, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.ArticleAuthor, cache.Key(number), func(ctx context.Context) (string, error) {
		article, err := s.Read(ctx, number)
		return article.Author, err
	})
}

// Update replaces every field of an existing article. The existence check
// and the write are a single store operation, so an article deleted
// concurrently is never written back.
func (s *ArticleService) Update(ctx context.Context, article model.Article) error {
	if err := validation.Validate(article.Number, validation.Required, validation.Min(1)); err != nil {
		return invalid("number", err)
	}
	replaced, err := s.store.Replace(ctx, &article)
	if err != nil {
		return fmt.Errorf("update article %d: %w", article.Number, err)
	}
	if !replaced {
		return fmt.Errorf("article %d: %w", article.Number, ErrNotFound)
	}
	s.evictAll()

	s.logger.Info("Article updated", zap.Int("number", article.Number))
	return nil
}

// Delete reports whether an article was removed. Nothing is evicted when
// there was nothing to remove.
func (s *ArticleService) Delete(ctx context.Context, number int) (bool, error) {
	deleted, err := s.store.Delete(ctx, number)
	if deleted {
		s.evictAll()
		s.logger.Info("Article deleted", zap.Int("number", number))
	}
	if err != nil {
		return deleted, fmt.Errorf("delete article %d: %w", number, err)
	}
	return deleted, nil
}

// ListPage returns page pageIndex of the collection ordered by number.
func (s *ArticleService) ListPage(ctx context.Context, pageIndex int) (model.Page, error) {
	if err := validation.Validate(pageIndex, validation.Min(0)); err != nil {
		return model.Page{}, invalid("page", err)
	}

	page, err := cache.GetOrCompute(ctx, s.cache, cache.ArticlePage, cache.Key(pageIndex), func(ctx context.Context) (model.Page, error) {
		articles, err := s.store.ListAll(ctx)
		if err != nil {
			return model.Page{}, fmt.Errorf("list articles: %w", err)
		}
		return model.Paginate(articles, pageIndex, PageSize), nil
	})
	if err != nil {
		return model.Page{}, err
	}
	// Cached pages are shared; hand out a copy.
	return page.Clone(), nil
}

func (s *ArticleService) load(ctx context.Context, number int) (model.Article, error) {
	article, err := s.store.Get(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return model.Article{}, fmt.Errorf("article %d: %w", number, ErrNotFound)
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("get article %d: %w", number, err)
	}
	return *article, nil
}

func (s *ArticleService) evictAll() {
	for _, ns := range cache.Namespaces {
		s.cache.EvictNamespace(ns)
	}
	s.logger.Debug("Article cache evicted")
}
