package pollen

// Load is a normalized, human-readable pollen load level derived from a
// provider's numeric index.
type Load string

const (
	LoadUnknown  Load = "unknown"
	LoadNone     Load = "none"
	LoadLow      Load = "low"
	LoadModerate Load = "moderate"
	LoadHigh     Load = "high"
)

// Reading holds the three allergen indices for one location and day.
// An index is nil when the source has no value for that allergen or the
// fetch failed; a nil index is never an error on its own.
type Reading struct {
	Birch    *float64 `json:"birch"`
	Grasses  *float64 `json:"grasses"`
	Ambrosia *float64 `json:"ambrosia"`
}

// Empty reports whether no allergen index is present.
func (r Reading) Empty() bool {
	return r.Birch == nil && r.Grasses == nil && r.Ambrosia == nil
}

// LoadOf maps a numeric pollen index onto a load level. The scale follows
// the DWD convention (0 = none, up to 3 = high; half steps allowed).
func LoadOf(index *float64) Load {
	if index == nil {
		return LoadUnknown
	}
	switch {
	case *index <= 0:
		return LoadNone
	case *index <= 1:
		return LoadLow
	case *index <= 2:
		return LoadModerate
	default:
		return LoadHigh
	}
}
