package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(from, to int) []Article {
	var articles []Article
	for n := from; n <= to; n++ {
		articles = append(articles, Article{Number: n, Title: "t", Text: "x", Author: "a"})
	}
	return articles
}

func numbers(articles []Article) []int {
	out := make([]int, len(articles))
	for i, a := range articles {
		out[i] = a.Number
	}
	return out
}

func TestPaginate_TwentyFiveArticles(t *testing.T) {
	articles := numbered(1, 25)
	rand.New(rand.NewSource(7)).Shuffle(len(articles), func(i, j int) {
		articles[i], articles[j] = articles[j], articles[i]
	})

	first := Paginate(articles, 0, 10)
	assert.Equal(t, 10, first.Size)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, numbers(first.Content))
	assert.Equal(t, 2, first.PageCount)
	assert.Equal(t, 10, first.PageSize)

	last := Paginate(articles, 2, 10)
	assert.Equal(t, 5, last.Size)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, numbers(last.Content))
	// floor(25/10): the partial third page is reachable but not counted.
	assert.Equal(t, 2, last.PageCount)
	assert.Equal(t, 2, last.PageIndex)

	beyond := Paginate(articles, 3, 10)
	assert.Empty(t, beyond.Content)
	assert.NotNil(t, beyond.Content)
	assert.Equal(t, 0, beyond.Size)
	assert.Equal(t, 3, beyond.PageIndex)
}

func TestPaginate_DoesNotReorderInput(t *testing.T) {
	articles := []Article{{Number: 3}, {Number: 1}, {Number: 2}}
	page := Paginate(articles, 0, 10)

	assert.Equal(t, []int{1, 2, 3}, numbers(page.Content))
	assert.Equal(t, []int{3, 1, 2}, numbers(articles))
}

func TestPaginate_PagesCoverCollectionOnce(t *testing.T) {
	articles := []Article{}
	for _, n := range rand.New(rand.NewSource(1)).Perm(47) {
		articles = append(articles, Article{Number: n*3 + 1})
	}

	seen := map[int]int{}
	var all []int
	for i := 0; ; i++ {
		page := Paginate(articles, i, 10)
		if page.Size == 0 {
			break
		}
		require.LessOrEqual(t, page.Size, 10)
		all = append(all, numbers(page.Content)...)
		for _, a := range page.Content {
			seen[a.Number]++
		}
	}

	assert.Len(t, seen, 47)
	for n, count := range seen {
		assert.Equal(t, 1, count, "article %d", n)
	}
	assert.IsIncreasing(t, all)
}

func TestPaginate_EmptyAndHugeIndex(t *testing.T) {
	empty := Paginate(nil, 0, 10)
	assert.Equal(t, 0, empty.Size)
	assert.Equal(t, 0, empty.PageCount)

	huge := Paginate(numbered(1, 5), math.MaxInt, 10)
	assert.Equal(t, 0, huge.Size)
}

func TestPage_Clone(t *testing.T) {
	page := Paginate(numbered(1, 3), 0, 10)
	clone := page.Clone()
	clone.Content[0].Title = "changed"

	assert.Equal(t, "t", page.Content[0].Title)
	assert.NotNil(t, Page{}.Clone().Content)
}
