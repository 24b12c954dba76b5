// Package lock holds the lock ledger: one row per lock event, superseded by
// flipping is_active rather than deleted.
package lock

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Record is a user's hold on a bike. At most one record per bike is active
// at a time; the transition engine deactivates predecessors in the same
// transaction that appends a new one.
type Record struct {
	ID     uuid.UUID `db:"lock_id" json:"lock_id"`
	BikeID int64     `db:"bike_id" json:"bike_id"`
	UserID int64     `db:"user_id" json:"user_id"`

	LockedAt time.Time     `db:"locked_at" json:"locked_at"`
	Lat      pgtype.Float8 `db:"lat" json:"-"`
	Lng      pgtype.Float8 `db:"lng" json:"-"`

	// Transferable means any user may take the bike without a formal rent.
	Transferable bool `db:"transferable" json:"transferable"`
	Active       bool `db:"is_active" json:"is_active"`
}
