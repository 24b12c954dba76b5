// Package hub models the physical sites of the fleet: hubs, their docked
// stations, and their overflow zones.
package hub

import (
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
)

// Kind distinguishes the two parking spot variants a bike can be docked at.
type Kind string

const (
	KindStation Kind = "Station"
	KindZone    Kind = "Zone"
)

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

// ParkedLocation is a tagged reference to either a station or a zone.
type ParkedLocation struct {
	Kind Kind
	ID   int64
}

// Hub is a named physical site aggregating stations and zones.
type Hub struct {
	ID   int64  `db:"hub_id"`
	Name string `db:"hub_name"`

	// Capacity and CurrentBikes gate the zone-return overflow policy:
	// CurrentBikes >= Capacity means the hub is full.
	Capacity     int `db:"capacity"`
	CurrentBikes int `db:"current_bikes"`

	Latitude  pgtype.Float8 `db:"latitude"`
	Longitude pgtype.Float8 `db:"longitude"`
}

// Full reports whether the hub has no room left for formal returns.
func (h Hub) Full() bool {
	return h.CurrentBikes >= h.Capacity
}

// Station is a fixed-capacity docking location within a hub. ParkedSlots
// counts occupied slots, bounded by 0 <= parked_slots <= total_slots.
type Station struct {
	ID          int64  `db:"station_id"`
	HubID       int64  `db:"hub_id"`
	Name        string `db:"station_name"`
	ParkedSlots int    `db:"parked_slots"`
	TotalSlots  int    `db:"total_slots"`
}

// Zone is an overflow, non-docked parking area within a hub.
type Zone struct {
	ID          int64  `db:"zone_id"`
	HubID       int64  `db:"hub_id"`
	Name        string `db:"zone_name"`
	ParkedSlots int    `db:"parked_slots"`
	TotalSlots  int    `db:"total_slots"`
}

// Availability is the result of a rentable-bike count for one hub. Found is
// false when the hub name did not resolve; that is a valid answer, not an
// error.
type Availability struct {
	HubName        string `json:"hub_name"`
	Found          bool   `json:"found"`
	AvailableBikes int    `json:"available_bikes"`
}

// Occupancy summarises slot usage across a hub's stations.
type Occupancy struct {
	HubID     int64         `db:"hub_id" json:"hub_id"`
	HubName   string        `db:"hub_name" json:"hub_name"`
	Latitude  pgtype.Float8 `db:"latitude" json:"-"`
	Longitude pgtype.Float8 `db:"longitude" json:"-"`
	ParkedSum int           `db:"parked_sum" json:"parked_sum"`
	TotalSum  int           `db:"total_sum" json:"total_sum"`
}
