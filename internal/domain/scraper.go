// internal/domain/scraper.go
package domain

import (
	"fmt"
	"strings"
)

// CrawlState is a phase of a single crawl run.
type CrawlState string

const (
	StateStart      CrawlState = "START"
	StateFirstPage  CrawlState = "FIRST_PAGE"
	StatePaginating CrawlState = "PAGINATING"
	StateDone       CrawlState = "DONE"
)

// TransportError reports a request that failed or came back with a
// non-success status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MissingFieldError reports a listing card without a required element.
type MissingFieldError struct {
	Field string
	Card  int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("card %d: missing %s", e.Card, e.Field)
}

// MalformedTitleError reports a card title that cannot be split into
// property type, address, town and postcode.
type MalformedTitleError struct {
	Title  string
	Parts  int
	Reason string
}

func (e *MalformedTitleError) Error() string {
	return fmt.Sprintf("malformed title %q (%d parts): %s", strings.TrimSpace(e.Title), e.Parts, e.Reason)
}

// PaginationParseError reports a results page whose pagination control does
// not yield a page count.
type PaginationParseError struct {
	Items int
	Err   error
}

func (e *PaginationParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pagination: %d items: %v", e.Items, e.Err)
	}
	return fmt.Sprintf("pagination: %d items, need at least 2", e.Items)
}

func (e *PaginationParseError) Unwrap() error { return e.Err }
