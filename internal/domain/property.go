// internal/domain/property.go
package domain

// AgentUnknown is stored when a card carries no agent logo.
const AgentUnknown = "N/A"

// FacilityUnknown pads the facilities text up to beds/toilets/living rooms.
const FacilityUnknown = "U"

// Listing is one property card from an ESPC results page.
type Listing struct {
	OfferType    string `json:"offer_type"`
	Price        string `json:"price"`
	PropertyType string `json:"property_type"`
	Address      string `json:"address"`
	Town         string `json:"town"`
	Postcode     string `json:"postcode"`
	Area         string `json:"area"`
	Beds         string `json:"beds"`
	Toilets      string `json:"toilets"`
	LivingRooms  string `json:"living_rooms"`
	Description  string `json:"description"`
	Link         string `json:"link"`
	Parking      bool   `json:"parking"`
	Allocated    bool   `json:"allocated"`
	Agent        string `json:"agent"`
}

// ListingColumns is the column order used by every tabular export.
var ListingColumns = []string{
	"offer_type",
	"price",
	"property_type",
	"address",
	"town",
	"postcode",
	"area",
	"beds",
	"toilets",
	"living_rooms",
	"description",
	"link",
	"parking",
	"allocated",
	"agent",
}

// ListingKey identifies listings that are the same property advertised twice.
type ListingKey struct {
	Agent   string
	Address string
	Price   string
}

func (l Listing) Key() ListingKey {
	return ListingKey{Agent: l.Agent, Address: l.Address, Price: l.Price}
}

// Row renders the listing in ListingColumns order.
func (l Listing) Row() []string {
	return []string{
		l.OfferType,
		l.Price,
		l.PropertyType,
		l.Address,
		l.Town,
		l.Postcode,
		l.Area,
		l.Beds,
		l.Toilets,
		l.LivingRooms,
		l.Description,
		l.Link,
		formatBool(l.Parking),
		formatBool(l.Allocated),
		l.Agent,
	}
}

// formatBool matches the True/False spelling spreadsheet users already
// filter on.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ResultSet accumulates listings across pages in the order they were scraped.
type ResultSet []Listing

func (rs ResultSet) Len() int { return len(rs) }

// Dedupe keeps the first listing seen for each Key, preserving order.
func (rs ResultSet) Dedupe() ResultSet {
	seen := make(map[ListingKey]struct{}, len(rs))
	out := make(ResultSet, 0, len(rs))
	for _, l := range rs {
		k := l.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

