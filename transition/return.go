package transition

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

// ReturnToZone closes a ride by dropping the bike in open space near a hub.
// Policy: only allowed while the hub is full, so zones absorb overflow
// rather than replace docks. The bike ends up unparked, physically locked,
// and immediately hand-off eligible via a fresh transferable lock record.
// A hub that does not exist counts as not-full and is refused.
func (e *Engine) ReturnToZone(ctx context.Context, hubID, bikeID, userID int64, lat, lng *float64) (ReturnResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ReturnToZone")
	defer span.End()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return ReturnResult{}, err
	}
	defer tx.Rollback()

	var h struct {
		Capacity     int `db:"capacity"`
		CurrentBikes int `db:"current_bikes"`
	}
	err = tx.GetContext(ctx, &h, zoneReturnSelectHub, hubID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ReturnResult{}, err
	}
	if errors.Is(err, sql.ErrNoRows) || h.CurrentBikes < h.Capacity {
		return ReturnResult{}, ErrHubNotFull
	}

	rentalID, err := selectActiveRide(ctx, tx, userID, bikeID)
	if err != nil {
		return ReturnResult{}, err
	}

	var closed struct {
		EndedAt     time.Time `db:"ended_at"`
		DurationMin int       `db:"duration_min"`
	}
	err = tx.GetContext(ctx, &closed, zoneCloseRental, rentalID)
	if err != nil {
		return ReturnResult{}, err
	}

	_, err = tx.ExecContext(ctx, zoneParkBike, bikeID)
	if err != nil {
		return ReturnResult{}, err
	}

	_, err = tx.ExecContext(ctx, lockDeactivate, bikeID, userID)
	if err != nil {
		return ReturnResult{}, err
	}

	_, err = tx.ExecContext(ctx, lockInsert, uuid.New(), bikeID, userID, lat, lng, true)
	if err != nil {
		return ReturnResult{}, err
	}

	if lat != nil && lng != nil {
		_, err = tx.ExecContext(ctx, insertLocationLog, bikeID, *lat, *lng)
		if err != nil {
			return ReturnResult{}, err
		}
	}

	result := ReturnResult{
		RentalID:    rentalID,
		EndedAt:     closed.EndedAt,
		DurationMin: closed.DurationMin,
	}
	return result, tx.Commit()
}

// ReturnToStation closes a ride by docking the bike at a station. Symmetric
// to Rent: the slot increment is guarded against exceeding total_slots and
// the hub counter against exceeding capacity, so a full dock refuses the
// return instead of overflowing.
func (e *Engine) ReturnToStation(ctx context.Context, bikeID, userID, stationID int64) (ReturnResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ReturnToStation")
	defer span.End()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return ReturnResult{}, err
	}
	defer tx.Rollback()

	var station struct {
		HubID int64 `db:"hub_id"`
	}
	err = tx.GetContext(ctx, &station, stationReturnSelect, stationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReturnResult{}, ErrStationNotFound
		}
		return ReturnResult{}, err
	}

	rentalID, err := selectActiveRide(ctx, tx, userID, bikeID)
	if err != nil {
		return ReturnResult{}, err
	}

	res, err := tx.ExecContext(ctx, stationGiveSlot, stationID)
	if err != nil {
		return ReturnResult{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return ReturnResult{}, err
	} else if n == 0 {
		return ReturnResult{}, ErrStationFull
	}

	res, err = tx.ExecContext(ctx, stationGiveHubBike, station.HubID)
	if err != nil {
		return ReturnResult{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return ReturnResult{}, err
	} else if n == 0 {
		return ReturnResult{}, ErrHubFull
	}

	var closed struct {
		EndedAt     time.Time `db:"ended_at"`
		DurationMin int       `db:"duration_min"`
	}
	err = tx.GetContext(ctx, &closed, stationCloseRental, rentalID, station.HubID)
	if err != nil {
		return ReturnResult{}, err
	}

	_, err = tx.ExecContext(ctx, stationParkBike, bikeID, stationID)
	if err != nil {
		return ReturnResult{}, err
	}

	// A docked bike carries no hold; clear any active lock records.
	_, err = tx.ExecContext(ctx, stationClearLocks, bikeID)
	if err != nil {
		return ReturnResult{}, err
	}

	result := ReturnResult{
		RentalID:    rentalID,
		EndedAt:     closed.EndedAt,
		DurationMin: closed.DurationMin,
		EndHubID:    &station.HubID,
	}
	return result, tx.Commit()
}

// selectActiveRide locks the caller's open rental row for the rest of the
// transaction, so a racing return cannot close it twice.
func selectActiveRide(ctx context.Context, tx *sqlx.Tx, userID, bikeID int64) (uuid.UUID, error) {
	var rentalID uuid.UUID
	err := tx.GetContext(ctx, &rentalID, returnSelectActiveRide, userID, bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNoActiveRide
	}
	return rentalID, err
}

const zoneReturnSelectHub = `
SELECT capacity, current_bikes FROM hubs WHERE hub_id = $1 FOR UPDATE
`

const returnSelectActiveRide = `
SELECT rental_id FROM rentals
WHERE user_id = $1 AND bike_id = $2 AND ended_at IS NULL
ORDER BY started_at DESC
LIMIT 1
FOR UPDATE
`

const zoneCloseRental = `
UPDATE rentals
SET end_hub_id = NULL,
    ended_at = now(),
    duration_min = floor(extract(epoch FROM (now() - started_at)) / 60)::int,
    status = 'Returned'
WHERE rental_id = $1
RETURNING ended_at, duration_min
`

const zoneParkBike = `
UPDATE bikes
SET status = 'Returning', assigned_hub_id = NULL, where_parked = NULL,
    is_available = true, lock_state = 'locked'
WHERE bike_id = $1
`

const insertLocationLog = `
INSERT INTO bike_location_log (bike_id, lat, lng, logged_at) VALUES ($1, $2, $3, now())
`

const stationReturnSelect = `SELECT hub_id FROM stations WHERE station_id = $1 FOR UPDATE`

const stationGiveSlot = `
UPDATE stations SET parked_slots = parked_slots + 1 WHERE station_id = $1 AND parked_slots < total_slots
`

const stationGiveHubBike = `
UPDATE hubs SET current_bikes = current_bikes + 1 WHERE hub_id = $1 AND current_bikes < capacity
`

const stationCloseRental = `
UPDATE rentals
SET end_hub_id = $2,
    ended_at = now(),
    duration_min = floor(extract(epoch FROM (now() - started_at)) / 60)::int,
    status = 'Returned'
WHERE rental_id = $1
RETURNING ended_at, duration_min
`

const stationParkBike = `
UPDATE bikes
SET status = 'Returned', assigned_hub_id = $2, where_parked = 'Station',
    is_available = true, lock_state = 'unlocked'
WHERE bike_id = $1
`

const stationClearLocks = `UPDATE lock_records SET is_active = false WHERE bike_id = $1 AND is_active`
