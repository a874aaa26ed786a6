// Package mode defines the trending crawl filter modes.
package mode

// Mode selects which filter clause and cache file a trending crawl uses.
type Mode string

// Filter mode constants.
const (
	// Filtered restricts the crawl to the Female+NSFW subset.
	Filtered Mode = "filtered"
	// Unfiltered covers the broader STANDARD subset.
	Unfiltered Mode = "unfiltered"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Filtered || m == Unfiltered
}

func (m Mode) String() string { return string(m) }
