package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AaronDeluna/new-york-times/internal/cache"
	"github.com/AaronDeluna/new-york-times/internal/service"
	"github.com/AaronDeluna/new-york-times/internal/store"

	"github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockScraper struct {
	MockTitle   string
	MockText    string
	MockByline  string
	MockSite    string
	ShouldFail  bool
	requestedAt string
}

// Scrape simulates article scraping
func (m *MockScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	m.requestedAt = url
	if m.ShouldFail {
		return nil, fmt.Errorf("simulated 404 error")
	}
	return &readability.Article{
		Title:       m.MockTitle,
		TextContent: m.MockText,
		Byline:      m.MockByline,
		SiteName:    m.MockSite,
		Excerpt:     "A short summary",
	}, nil
}

func newTestImporter(t *testing.T, scraper Scraper) (*Importer, *service.ArticleService) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), st, 10))
	svc := service.NewArticleService(st, cache.NewStore(nil), zap.NewNop())

	im := NewImporter(svc, zap.NewNop())
	im.scraper = scraper
	return im, svc
}

// TestImporter_Import tests that a scraped page becomes a readable article
func TestImporter_Import(t *testing.T) {
	scraper := &MockScraper{
		MockTitle:  "  Mocked Title ",
		MockText:   "This is fake content\n",
		MockByline: "Jane Roe",
	}
	im, svc := newTestImporter(t, scraper)
	ctx := context.Background()

	created, err := im.Import(ctx, "http://fake-url.com")
	require.NoError(t, err)
	assert.Equal(t, "http://fake-url.com", scraper.requestedAt)
	assert.Equal(t, 11, created.Number)

	got, err := svc.Read(ctx, created.Number)
	require.NoError(t, err)
	assert.Equal(t, "Mocked Title", got.Title)
	assert.Equal(t, "This is fake content", got.Text)
	assert.Equal(t, "Jane Roe", got.Author)

	page, err := svc.ListPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Content[0].Number)
}

func TestImporter_AuthorAndTextFallbacks(t *testing.T) {
	im, _ := newTestImporter(t, &MockScraper{MockTitle: "T", MockSite: "Example News"})

	created, err := im.Import(context.Background(), "http://fake-url.com")
	require.NoError(t, err)
	assert.Equal(t, "Example News", created.Author)
	assert.Equal(t, "A short summary", created.Text)

	im.scraper = &MockScraper{MockTitle: "T", MockText: "X"}
	created, err = im.Import(context.Background(), "http://fake-url.com/2")
	require.NoError(t, err)
	assert.Equal(t, unknownAuthor, created.Author)
}

// TestImporter_HandlesScrapeFailure tests that nothing is stored when
// the page cannot be fetched
func TestImporter_HandlesScrapeFailure(t *testing.T) {
	im, svc := newTestImporter(t, &MockScraper{ShouldFail: true})

	_, err := im.Import(context.Background(), "http://bad-url.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated 404 error")

	page, err := svc.ListPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}
