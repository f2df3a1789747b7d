package model

import (
	"cmp"
	"slices"
)

// Page is one slice of the article collection, ordered by number.
// It is derived per request and never stored.
type Page struct {
	Content   []Article `json:"content"`
	PageCount int       `json:"countPage"`
	PageIndex int       `json:"currentPage"`
	PageSize  int       `json:"maxPageSize"`
	Size      int       `json:"size"`
}

// Paginate sorts articles by number and cuts out page pageIndex.
//
// PageCount is total/pageSize rounded down, so a partial last page is not
// counted even though it can be requested. An index past the end yields an
// empty page. The input slice is not modified.
func Paginate(articles []Article, pageIndex, pageSize int) Page {
	total := len(articles)
	page := Page{
		Content:   []Article{},
		PageCount: total / pageSize,
		PageIndex: pageIndex,
		PageSize:  pageSize,
	}
	// Compare before multiplying so huge indexes cannot overflow.
	if pageIndex > total/pageSize {
		return page
	}
	start := pageIndex * pageSize
	if start >= total {
		return page
	}
	end := min(start+pageSize, total)

	sorted := slices.Clone(articles)
	slices.SortFunc(sorted, func(a, b Article) int {
		return cmp.Compare(a.Number, b.Number)
	})

	page.Content = sorted[start:end:end]
	page.Size = len(page.Content)
	return page
}

// Clone returns a copy whose Content does not share memory with p.
func (p Page) Clone() Page {
	p.Content = slices.Clone(p.Content)
	if p.Content == nil {
		p.Content = []Article{}
	}
	return p
}
