// Package pager collects paginated API results into a single slice.
package pager

import (
	"context"
	"fmt"
	"log/slog"
)

// Page is one page of results. Next is nil when the API reported no
// continuation cursor.
type Page[T any] struct {
	Items []T
	Next  func(ctx context.Context) (*Page[T], error)
}

// HasNext reports whether another page can be fetched.
func (p *Page[T]) HasNext() bool {
	return p != nil && p.Next != nil
}

type settings struct {
	partial  bool
	logger   *slog.Logger
	progress func(total int)
}

// Option configures Collect.
type Option func(*settings)

// WithPartialResults makes Collect stop at the first failing page after the
// first one, log the failure, and return what it has accumulated.
func WithPartialResults(logger *slog.Logger) Option {
	return func(s *settings) {
		s.partial = true
		s.logger = logger
	}
}

// WithProgress registers a callback invoked after every page with the number
// of items collected so far.
func WithProgress(fn func(total int)) Option {
	return func(s *settings) {
		s.progress = fn
	}
}

// Collect walks pages starting at first and returns all items in API order.
// Pagination stops exactly when a page has no Next.
func Collect[T any](ctx context.Context, first *Page[T], opts ...Option) ([]T, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if first == nil {
		return nil, nil
	}

	items := make([]T, 0, len(first.Items))
	page := first
	pageNum := 1

	for {
		items = append(items, page.Items...)
		if s.progress != nil {
			s.progress(len(items))
		}

		if !page.HasNext() {
			return items, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := page.Next(ctx)
		pageNum++
		if err != nil {
			if s.partial && ctx.Err() == nil {
				if s.logger != nil {
					s.logger.Error("Error during pagination, keeping partial results",
						"page", pageNum,
						"collected", len(items),
						"error", err,
					)
				}
				return items, nil
			}
			return nil, fmt.Errorf("fetching page %d: %w", pageNum, err)
		}
		if next == nil {
			return items, nil
		}
		page = next
	}
}
