package model

import "fmt"

// Article is a single news item. Number is assigned once and identifies the
// article for its whole lifetime.
type Article struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// NewArticle creates an unnumbered Article; the store assigns the number on Put.
func NewArticle(title, text, author string) Article {
	return Article{
		Title:  title,
		Text:   text,
		Author: author,
	}
}

func (a Article) String() string {
	return fmt.Sprintf("#%d %q by %s", a.Number, a.Title, a.Author)
}
