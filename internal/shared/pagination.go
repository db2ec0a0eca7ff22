package shared

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the page size used when the client omits one.
	DefaultLimit = 10
	// MaxLimit caps the page size for list endpoints.
	MaxLimit = 100
)

// Page holds offset/limit pagination parameters for list endpoints.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads offset/limit query parameters, applying defaults and caps.
// Malformed or negative values fall back to the defaults.
func ParsePage(values url.Values) Page {
	page := Page{Offset: 0, Limit: DefaultLimit}

	if raw := values.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Offset = v
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Limit = v
		}
	}
	if page.Limit > MaxLimit {
		page.Limit = MaxLimit
	}
	return page
}
