package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// Destination is the snapshot of a Location a trip is headed to. It is
// copied onto the trip at creation, so later edits to the location row
// never rewrite trip history.
type Destination struct {
	LocationID  uuid.UUID   `json:"location_id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	Category    string      `json:"category"`
}

// Value serializes the destination snapshot to JSON.
func (d *Destination) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan decodes JSONB into the destination snapshot.
func (d *Destination) Scan(value interface{}) error {
	if value == nil {
		*d = Destination{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, d)
}
