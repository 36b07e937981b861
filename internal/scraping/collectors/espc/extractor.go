// internal/scraping/collectors/espc/extractor.go
package espc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/ps-vitor/espc-sys/internal/domain"
)

// Selectors for the ESPC results markup.
var (
	cardSelector        = cascadia.MustCompile("div.infoWrap")
	linkSelector        = cascadia.MustCompile("a")
	titleSelector       = cascadia.MustCompile("h3.propertyTitle")
	descriptionSelector = cascadia.MustCompile("div.description")
	offerSelector       = cascadia.MustCompile("span.offersOver")
	priceSelector       = cascadia.MustCompile("span.price")
	facilitiesSelector  = cascadia.MustCompile("div.facilities")
	agentLogoSelector   = cascadia.MustCompile("div.logoWrap img")
)

var titleDelimiters = regexp.MustCompile(`[:|,]`)

// Extractor turns one results page into listings. It holds no state between
// calls.
type Extractor struct {
	origin string
}

// NewExtractor returns an extractor that resolves relative card links
// against origin, e.g. "https://espc.com".
func NewExtractor(origin string) *Extractor {
	return &Extractor{origin: strings.TrimRight(origin, "/")}
}

func parseDocument(markup string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("espc: parse markup: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Extract returns one listing per card, in document order. The first card
// that does not match the expected layout stops extraction.
func (e *Extractor) Extract(markup string) ([]domain.Listing, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	var cardErr error
	doc.FindMatcher(cardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		listing, err := e.extractCard(i, card)
		if err != nil {
			cardErr = err
			return false
		}
		listings = append(listings, listing)
		return true
	})
	if cardErr != nil {
		return nil, cardErr
	}
	return listings, nil
}

func (e *Extractor) extractCard(i int, card *goquery.Selection) (domain.Listing, error) {
	var l domain.Listing

	href, ok := card.FindMatcher(linkSelector).First().Attr("href")
	if !ok {
		return l, &domain.MissingFieldError{Field: "link", Card: i}
	}
	l.Link = e.origin + href

	title := card.FindMatcher(titleSelector).First()
	if title.Length() == 0 {
		return l, &domain.MissingFieldError{Field: "title", Card: i}
	}
	parts, err := splitTitle(title.Text())
	if err != nil {
		return l, err
	}
	l.PropertyType = parts.propertyType
	l.Address = parts.address
	l.Town = parts.town
	l.Postcode = parts.postcode
	l.Area = parts.area

	offer := card.FindMatcher(offerSelector).First()
	if offer.Length() == 0 {
		return l, &domain.MissingFieldError{Field: "offer", Card: i}
	}
	price := card.FindMatcher(priceSelector).First()
	if price.Length() == 0 {
		return l, &domain.MissingFieldError{Field: "price", Card: i}
	}
	l.OfferType = offerType(offer.Text(), price.Text())
	l.Price = strings.TrimSpace(price.Text())

	facilities := card.FindMatcher(facilitiesSelector).First()
	if facilities.Length() == 0 {
		return l, &domain.MissingFieldError{Field: "facilities", Card: i}
	}
	f := padFacilities(facilities.Text())
	l.Beds, l.Toilets, l.LivingRooms = f[0], f[1], f[2]

	description := card.FindMatcher(descriptionSelector).First()
	if description.Length() == 0 {
		return l, &domain.MissingFieldError{Field: "description", Card: i}
	}
	raw := description.Text()
	l.Description, _, _ = strings.Cut(raw, "\n")
	l.Parking = mentions(raw, "parking")
	l.Allocated = mentions(raw, "allocated")

	l.Agent = domain.AgentUnknown
	if alt, ok := card.FindMatcher(agentLogoSelector).First().Attr("alt"); ok {
		l.Agent = alt
	}

	return l, nil
}

type titleParts struct {
	propertyType string
	address      string
	town         string
	postcode     string
	area         string
}

// splitTitle breaks "Flat: 1 High Street, Edinburgh, EH1 1AA" style titles
// apart. When the tail carries the town as well ("Leith EH6 5AB"), the town
// is taken from the tail instead of the third part.
func splitTitle(title string) (titleParts, error) {
	var p titleParts

	parts := titleDelimiters.Split(title, -1)
	if len(parts) < 3 {
		return p, &domain.MalformedTitleError{Title: title, Parts: len(parts), Reason: "need at least 3 parts"}
	}

	tail := strings.TrimSpace(parts[len(parts)-1])
	if strings.Count(tail, " ") > 1 {
		tokens := strings.Fields(tail)
		p.town = tokens[0]
		p.postcode = strings.Join(tokens[len(tokens)-2:], " ")
	} else {
		p.town = strings.TrimSpace(parts[2])
		p.postcode = tail
	}

	postcodeTokens := strings.Fields(p.postcode)
	if len(postcodeTokens) == 0 {
		return p, &domain.MalformedTitleError{Title: title, Parts: len(parts), Reason: "empty postcode"}
	}
	p.area = postcodeTokens[0]
	p.propertyType = strings.TrimSpace(parts[0])
	p.address = strings.TrimSpace(parts[1])
	return p, nil
}

// offerType drops the trailing ": <price>" from the offer label. Labels
// that do not end that way lose the same number of characters anyway.
func offerType(offer, price string) string {
	r := []rune(offer)
	n := len([]rune(price)) + 1
	if n >= len(r) {
		return ""
	}
	return string(r[:len(r)-n])
}

// padFacilities maps the facilities text onto beds, toilets and living
// rooms, one character each. Counts of 10 or more do not fit.
func padFacilities(text string) [3]string {
	r := []rune(text + strings.Repeat(domain.FacilityUnknown, 3))
	return [3]string{string(r[0]), string(r[1]), string(r[2])}
}

func mentions(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), keyword)
}
