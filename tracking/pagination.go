package tracking

import (
	"context"
	"errors"
	"fmt"
)

// ErrTooManyPages indicates a paged search exceeded its configured page
// bound without the server signaling end-of-pages.
var ErrTooManyPages = errors.New("tracking: page limit exceeded")

// Page is one page of search results plus the server's continuation token.
// A nil NextPageToken means the server reported no further pages.
type Page[T any] struct {
	Items         []T
	NextPageToken *string
}

// FetchPage fetches a single page. A nil pageToken requests the first page;
// otherwise the token must be exactly the one returned by the previous page.
type FetchPage[T any] func(ctx context.Context, pageToken *string) (Page[T], error)

// TerminationPolicy reports whether a response token ends pagination.
// Endpoints differ on how they signal exhaustion, so the check is injected
// per search operation rather than hardcoded.
type TerminationPolicy func(nextPageToken *string) bool

// HaltOnAbsentToken stops when the token is absent. This is the standard
// contract of the search endpoints.
func HaltOnAbsentToken(nextPageToken *string) bool {
	return nextPageToken == nil
}

// HaltOnAbsentOrEmptyToken stops when the token is absent or a literal empty
// string. The registered models endpoint has been observed to report
// exhaustion either way, so its searches use this policy. Other endpoints
// must not: an empty string could in principle be a real token there.
func HaltOnAbsentOrEmptyToken(nextPageToken *string) bool {
	return nextPageToken == nil || *nextPageToken == ""
}

// CollectPages drains a paged search into a single slice, fetching pages
// sequentially and preserving their order. Items are never deduplicated or
// re-sorted.
//
// Any fetch error aborts the whole collection: accumulated items are
// discarded and only the error is returned. maxPages > 0 bounds the number
// of fetches as a guard against a server that never stops returning tokens;
// zero means unbounded.
func CollectPages[T any](ctx context.Context, fetch FetchPage[T], halt TerminationPolicy, maxPages int) ([]T, error) {
	var items []T
	var pageToken *string

	for fetched := 0; ; fetched++ {
		if maxPages > 0 && fetched >= maxPages {
			return nil, fmt.Errorf("%w: server still returning tokens after %d pages", ErrTooManyPages, maxPages)
		}

		page, err := fetch(ctx, pageToken)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)
		if halt(page.NextPageToken) {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}
