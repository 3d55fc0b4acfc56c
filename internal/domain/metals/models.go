package metals

import "time"

// Metal identifies a tracked precious metal.
type Metal string

const (
	Gold      Metal = "gold"
	Silver    Metal = "silver"
	Platinum  Metal = "platinum"
	Palladium Metal = "palladium"
)

// Tracked is the full set of metals the ticker serves.
var Tracked = []Metal{Gold, Silver, Platinum, Palladium}

// Quote is one spot price observation, in cents per troy ounce.
type Quote struct {
	Metal     Metal     `json:"metal" db:"metal"`
	Price     int64     `json:"price_cents" db:"price_cents"`
	FetchedAt time.Time `json:"fetched_at" db:"fetched_at"`
}

// staticFallback is the last line of the resolution chain: served only when
// the upstream feed fails and the database holds no prior quote.
var staticFallback = map[Metal]int64{
	Gold:      265000,
	Silver:    3100,
	Platinum:  98000,
	Palladium: 102000,
}
