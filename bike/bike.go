// Package bike
package bike

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/campusbike/hubshare-backend/hub"
)

// Status is the rental lifecycle state of a bike.
type Status int

const (
	// StatusReturned means the bike is back in inventory and can be rented.
	StatusReturned Status = iota
	// StatusUsing means the bike is out on an open rental.
	StatusUsing
	// StatusReturning means the bike was dropped outside a formal dock (zone
	// return) and is waiting for a hand-off or a rebalancing run.
	StatusReturning
)

func (s Status) String() string {
	return [...]string{"Returned", "Using", "Returning"}[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "Returned":
			*s = StatusReturned
			return nil
		case "Using":
			*s = StatusUsing
			return nil
		case "Returning":
			*s = StatusReturning
			return nil
		}
	}
	panic("invalid scan type")
}

// LockState is the physical lock state reported for a bike. A locked bike can
// still be marked available: that is the hand-off window.
type LockState string

const (
	Locked   LockState = "locked"
	Unlocked LockState = "unlocked"
)

// Bike represents a bike in the shared fleet.
type Bike struct {
	// ID is the fleet identifier for the bike.
	ID int64 `db:"bike_id"`
	// Label is a physical label on the bike frame (e.g. "HUB-0123").
	Label string `db:"label"`

	Status    Status    `db:"status"`
	LockState LockState `db:"lock_state"`
	Available bool      `db:"is_available"`

	// AssignedHubID is the station or zone the bike is docked at, nil while
	// riding or zone-parked. WhereParked says which table it references.
	AssignedHubID *int64    `db:"assigned_hub_id"`
	WhereParked   *hub.Kind `db:"where_parked"`

	Active      bool       `db:"is_active"`
	UnderRepair bool       `db:"is_under_repair"`
	Retired     bool       `db:"is_retired"`

	LastRentedAt *time.Time `db:"last_rented_at"`
}

// Location returns the bike's parking spot as a tagged variant, or false if
// the bike is not docked anywhere.
func (b Bike) Location() (hub.ParkedLocation, bool) {
	if b.WhereParked == nil || b.AssignedHubID == nil {
		return hub.ParkedLocation{}, false
	}
	return hub.ParkedLocation{Kind: *b.WhereParked, ID: *b.AssignedHubID}, true
}
