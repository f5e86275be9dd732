package matchmapping

import "time"

// Mapping links a feed match id to the provider's match id. Mappings are
// write-once and never expire.
type Mapping struct {
	OddsMatchID       string
	SportradarMatchID string
	CreatedAt         time.Time
}
