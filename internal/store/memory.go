package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/AaronDeluna/new-york-times/internal/model"
)

// MemoryStore keeps articles in a map. It is the default store of the server
// and the fake used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[int]model.Article
	last     int // highest number ever stored
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[int]model.Article)}
}

func (s *MemoryStore) Get(_ context.Context, number int) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[number]
	if !ok {
		return nil, ErrNotFound
	}
	return &article, nil
}

func (s *MemoryStore) Put(_ context.Context, article *model.Article) error {
	if article.Number < 0 {
		return fmt.Errorf("invalid article number %d", article.Number)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if article.Number == 0 {
		article.Number = s.last + 1
	}
	s.last = max(s.last, article.Number)
	s.articles[article.Number] = *article
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, article *model.Article) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[article.Number]; !ok {
		return false, nil
	}
	s.articles[article.Number] = *article
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, number int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[number]; !ok {
		return false, nil
	}
	delete(s.articles, number)
	return true, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := make([]model.Article, 0, len(s.articles))
	for _, a := range s.articles {
		articles = append(articles, a)
	}
	return articles, nil
}
