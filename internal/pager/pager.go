// Package pager drains cursor-paginated result sets into a single ordered slice.
package pager

import "context"

// Page is one page of a paginated result set.
type Page[T any] struct {
	Items []T
	Next  *string // cursor of the following page, nil on the last page
}

// FetchFunc fetches the page addressed by cursor.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Drain follows next cursors from first until no further page is indicated,
// returning all items in server order.
//
// Pages are fetched forward exactly once and never cached. A fetch error is
// returned to the caller as-is; retry policy belongs to the fetcher.
func Drain[T any](ctx context.Context, first Page[T], next FetchFunc[T]) ([]T, error) {
	items := append([]T(nil), first.Items...)

	page := first
	for page.Next != nil {
		var err error
		page, err = next(ctx, *page.Next)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}

	return items, nil
}
