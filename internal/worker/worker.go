package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AaronDeluna/new-york-times/internal/model"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

const (
	scrapeTimeout = 30 * time.Second
	unknownAuthor = "unknown"
)

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Creator stores a new article and returns it with its number.
type Creator interface {
	Create(ctx context.Context, article model.Article) (model.Article, error)
}

// Importer turns web pages into articles.
type Importer struct {
	articles Creator
	logger   *zap.Logger
	scraper  Scraper
}

// NewImporter initializes the importer with the DefaultScraper
func NewImporter(articles Creator, logger *zap.Logger) *Importer {
	return &Importer{
		articles: articles,
		logger:   logger,
		scraper:  &DefaultScraper{},
	}
}

// Import downloads url and creates an article from its readable content.
func (im *Importer) Import(ctx context.Context, url string) (model.Article, error) {
	logger := im.logger.With(zap.String("url", url))
	logger.Info("Downloading")

	parsed, err := im.scraper.Scrape(url, scrapeTimeout)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		return model.Article{}, fmt.Errorf("scrape %s: %w", url, err)
	}

	article := model.NewArticle(
		strings.TrimSpace(parsed.Title),
		strings.TrimSpace(parsed.TextContent),
		authorOf(parsed),
	)
	if article.Text == "" {
		article.Text = strings.TrimSpace(parsed.Excerpt)
	}

	created, err := im.articles.Create(ctx, article)
	if err != nil {
		logger.Error("Failed to save imported article", zap.Error(err))
		return model.Article{}, err
	}

	logger.Info("Import complete", zap.Int("number", created.Number), zap.String("title", created.Title))
	return created, nil
}

func authorOf(parsed *readability.Article) string {
	if byline := strings.TrimSpace(parsed.Byline); byline != "" {
		return byline
	}
	if site := strings.TrimSpace(parsed.SiteName); site != "" {
		return site
	}
	return unknownAuthor
}
