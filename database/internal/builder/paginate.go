package builder

import (
	"context"
	"encoding/json"

	"github.com/bowphp/framework-sub001/database/types"
)

// Page is one page of a paginated SELECT.
type Page struct {
	Data Rows
	// Chunks partitions Data when a chunk size was requested.
	Chunks   []Rows
	Current  int
	Previous int
	// Next is 0 on the last page.
	Next    int
	PerPage int
	// Total is the number of pages, Count the number of matching rows.
	Total int
	Count int64
}

// HasNext reports whether another page follows.
func (p *Page) HasNext() bool {
	return p.Next > 0
}

// MarshalJSON renders a missing next page as false and chunked data as
// nested arrays.
func (p *Page) MarshalJSON() ([]byte, error) {
	var next any = false
	if p.HasNext() {
		next = p.Next
	}
	var data any = p.Data
	if p.Chunks != nil {
		data = p.Chunks
	}

	return json.Marshal(struct {
		Data     any   `json:"data"`
		Current  int   `json:"current"`
		Previous int   `json:"previous"`
		Next     any   `json:"next"`
		PerPage  int   `json:"per_page"`
		Total    int   `json:"total"`
		Count    int64 `json:"count"`
	}{
		Data:     data,
		Current:  p.Current,
		Previous: p.Previous,
		Next:     next,
		PerPage:  p.PerPage,
		Total:    p.Total,
		Count:    p.Count,
	})
}

// Paginate fetches page currentPage of pageSize rows. Pages at or below 1
// are page 1. The WHERE and JOIN chains apply to both the page query and the
// row count.
func (b *Builder) Paginate(ctx context.Context, pageSize, currentPage int, chunkSize ...int) (*Page, error) {
	if err := b.begin("paginate"); err != nil {
		return nil, err
	}
	defer b.finish()

	if pageSize <= 0 {
		b.compiled()
		return nil, b.fail("paginate", "", types.ErrInvalidRange)
	}

	current := max(currentPage, 1)
	offset := uint64(pageSize) * uint64(current-1)

	snap := b.snapshot()
	b.limit = limitSpec{offset: offset, count: uint64(pageSize), hasOffset: true, hasCount: true}

	rows, err := b.get(ctx)
	if err != nil {
		return nil, err
	}

	b.restore(snap)
	count, err := b.count(ctx)
	if err != nil {
		return nil, err
	}

	total := int((count + int64(pageSize) - 1) / int64(pageSize))
	page := &Page{
		Data:     rows,
		Current:  current,
		Previous: max(current-1, 1),
		PerPage:  pageSize,
		Total:    total,
		Count:    count,
	}
	if current < total {
		page.Next = current + 1
	}
	if len(chunkSize) > 0 && chunkSize[0] > 0 {
		page.Chunks = rows.Chunk(chunkSize[0])
	}
	return page, nil
}
