package ordering

import "strings"

// Ordering is the final sort applied to ranked results.
type Ordering string

// Ordering constants.
const (
	// Price sorts ascending by price.
	Price     Ordering = "price"
	Relevance Ordering = "relevance"
)

// IsValid checks if the ordering is one of the supported values.
func (o Ordering) IsValid() bool {
	return o == Price || o == Relevance
}

// Parse normalizes a user-supplied ordering. Empty input defaults to Price.
func Parse(s string) (Ordering, bool) {
	if s == "" {
		return Price, true
	}
	o := Ordering(strings.ToLower(strings.TrimSpace(s)))
	return o, o.IsValid()
}
