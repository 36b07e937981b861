package espc

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/ps-vitor/espc-sys/internal/domain"
)

var paginationSelector = cascadia.MustCompile("ul.paginationList > li")

// PageCount reads the total number of result pages from the pagination
// list. The last item is the "Next" link, so the count is the one before it.
func PageCount(markup string) (int, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return 0, err
	}

	items := doc.FindMatcher(paginationSelector)
	if items.Length() < 2 {
		return 0, &domain.PaginationParseError{Items: items.Length()}
	}

	text := strings.TrimSpace(items.Eq(items.Length() - 2).Text())
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, &domain.PaginationParseError{Items: items.Length(), Err: err}
	}
	return n, nil
}

// PageURL inserts "p=<n>&" right after the first "?" of searchURL.
func PageURL(searchURL string, page int) string {
	at := strings.Index(searchURL, "?") + 1
	return searchURL[:at] + "p=" + strconv.Itoa(page) + "&" + searchURL[at:]
}
