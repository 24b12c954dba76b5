// Package transition implements the bike state machine: the guarded
// read-modify-write operations that move a bike between rented, locked,
// transferable, and returned states together with the slot counters of its
// hub. Correctness comes from the store's transactions, not in-process
// locks: every operation is a single BeginTxx/commit with FOR UPDATE reads
// and conditional counter updates, so concurrent instances of the service
// stay consistent.
package transition

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBikeNotFound    = errors.New("bike not found")
	ErrStationNotFound = errors.New("station not found")

	// Conflicts: a state precondition failed or a counter guard tripped.
	ErrBikeNotReturned = errors.New("bike is not in a rentable state")
	ErrNotParked       = errors.New("bike is not parked at a station or zone")
	ErrSlotUnavailable = errors.New("no parked bike accounted for at this location")
	ErrRentalOpen      = errors.New("bike already has a rental in progress")
	ErrHubNotFull      = errors.New("hub still has room; zone return refused")
	ErrStationFull     = errors.New("station has no free slots")
	ErrHubFull         = errors.New("hub is at capacity")

	ErrNoActiveRide  = errors.New("no ride in progress for this user and bike")
	ErrNotLockHolder = errors.New("no active lock held by this user on this bike")

	// Integrity failures: an invariant the system itself maintains was
	// violated. Always surfaced, never defaulted away.
	ErrHubUnresolvable   = errors.New("no owning hub for parking location")
	ErrHubInventoryDrift = errors.New("hub bike counter out of step with bike placement")
)

const tracerName = "transition"

type Engine struct {
	db *sqlx.DB
}

func NewEngine(db *sqlx.DB) *Engine {
	return &Engine{db: db}
}

// RentResult identifies the rental opened by a successful Rent.
type RentResult struct {
	RentalID  uuid.UUID `db:"rental_id"`
	StartedAt time.Time `db:"started_at"`
}

// ReturnResult summarises the rental closed by a return. EndHubID is nil
// for a zone return.
type ReturnResult struct {
	RentalID    uuid.UUID
	EndedAt     time.Time
	DurationMin int
	EndHubID    *int64
}
