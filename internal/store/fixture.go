package store

import (
	"context"
	"fmt"

	"github.com/AaronDeluna/new-york-times/internal/model"
)

const (
	DefaultSeedCount = 1000
	fixtureAuthor    = "Molodyko Yuri"
)

// FixtureArticle returns the seeded article with the given number.
func FixtureArticle(number int) model.Article {
	return model.Article{
		Number: number,
		Title:  fmt.Sprintf("News #%d", number),
		Text:   fmt.Sprintf("Today is Groundhog Day #%d", number),
		Author: fixtureAuthor,
	}
}

// Seed stores fixture articles 1..count, replacing any existing ones.
func Seed(ctx context.Context, st Store, count int) error {
	for n := 1; n <= count; n++ {
		article := FixtureArticle(n)
		if err := st.Put(ctx, &article); err != nil {
			return fmt.Errorf("seed article %d: %w", n, err)
		}
	}
	return nil
}
