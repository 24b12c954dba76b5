package rental

import (
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status string

const (
	StatusUsing    Status = "Using"
	StatusReturned Status = "Returned"
)

// Rental is one ledger row of the rental history. Rows are closed, never
// deleted; the open rental for a bike is the row with a null EndedAt.
type Rental struct {
	ID     uuid.UUID `db:"rental_id" json:"rental_id"`
	BikeID int64     `db:"bike_id" json:"bike_id"`
	UserID int64     `db:"user_id" json:"user_id"`

	StartHubID int64 `db:"start_hub_id" json:"start_hub_id"`
	// EndHubID stays null for a zone return: the ride ended off-hub.
	EndHubID *int64 `db:"end_hub_id" json:"end_hub_id"`

	StartedAt   time.Time     `db:"started_at" json:"started_at"`
	EndedAt     sql.NullTime  `db:"ended_at" json:"-"`
	DurationMin sql.NullInt32 `db:"duration_min" json:"-"`
	Status      Status        `db:"status" json:"status"`
}

func (r Rental) MarshalJSON() ([]byte, error) {
	type alias Rental
	out := struct {
		alias
		EndedAt     *time.Time `json:"ended_at"`
		DurationMin *int32     `json:"duration_min"`
	}{alias: alias(r)}
	if r.EndedAt.Valid {
		out.EndedAt = &r.EndedAt.Time
	}
	if r.DurationMin.Valid {
		out.DurationMin = &r.DurationMin.Int32
	}
	return json.Marshal(out)
}
