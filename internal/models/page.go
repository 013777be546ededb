package models

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func NewPage[T any](items []T, total, page, pageSize int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
}

func (p *Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p *Page[T]) HasPrev() bool { return p.Page > 1 }

func (p *Page[T]) HasNext() bool { return p.Page < p.TotalPages() }

func (p *Page[T]) PrevPage() int { return p.Page - 1 }

func (p *Page[T]) NextPage() int { return p.Page + 1 }
