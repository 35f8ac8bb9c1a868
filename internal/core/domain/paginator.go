package domain

import (
	"strconv"
	"strings"
)

const DefaultPageSize = 10

// Paginator splits an ordered result of Total items into fixed-size pages.
type Paginator struct {
	Total   int64
	PerPage int
}

func NewPaginator(total int64, perPage int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return Paginator{Total: total, PerPage: perPage}
}

// NumPages is never below 1: an empty list still has an (empty) first page.
func (p Paginator) NumPages() int {
	if p.Total <= 0 {
		return 1
	}
	per := int64(p.PerPage)
	return int((p.Total + per - 1) / per)
}

// GetPage resolves a raw page parameter: missing or non-numeric means the first
// page, anything out of range means the last one.
func (p Paginator) GetPage(raw string) PageWindow {
	number := 1
	if raw = strings.TrimSpace(raw); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			number = n
			if n < 1 || n > p.NumPages() {
				number = p.NumPages()
			}
		}
	}
	return PageWindow{
		Number:   number,
		NumPages: p.NumPages(),
		Offset:   (number - 1) * p.PerPage,
		Limit:    p.PerPage,
		Total:    p.Total,
	}
}

// PageWindow is one resolved page of a Paginator.
type PageWindow struct {
	Number   int
	NumPages int
	Offset   int
	Limit    int
	Total    int64
}

func (w PageWindow) HasPrevious() bool { return w.Number > 1 }
func (w PageWindow) HasNext() bool { return w.Number < w.NumPages }
func (w PageWindow) PreviousPage() int { return w.Number - 1 }
func (w PageWindow) NextPage() int { return w.Number + 1 }
func (w PageWindow) HasOtherPages() bool { return w.NumPages > 1 }

// PostPage is a page of posts ready to be rendered.
type PostPage struct {
	PageWindow
	Posts []*Post
}

func (p *PostPage) Len() int {
	return len(p.Posts)
}
