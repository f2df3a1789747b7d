package store

import (
	"context"
	"errors"

	"github.com/AaronDeluna/new-york-times/internal/model"
)

var (
	ErrNotFound = errors.New("article not found")
)

// Store persists articles. Put inserts or fully replaces; an article with
// Number 0 gets the next number from the store's sequence, written back into
// the argument. Replace overwrites an existing article only, reporting false
// when there is none; the check and the write happen as one step. ListAll
// makes no ordering promise.
type Store interface {
	Get(ctx context.Context, number int) (*model.Article, error)
	Put(ctx context.Context, article *model.Article) error
	Replace(ctx context.Context, article *model.Article) (bool, error)
	Delete(ctx context.Context, number int) (bool, error)
	ListAll(ctx context.Context) ([]model.Article, error)
}
