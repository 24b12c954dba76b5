package transition

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/campusbike/hubshare-backend/bike"
	"github.com/campusbike/hubshare-backend/hub"
)

// Rent opens a rental for a parked bike. The slot decrement and the hub
// counter decrement are conditional: if either matches no row the whole
// transaction aborts, so two rents racing for the last accounted slot can
// never both win and no counter ever goes negative.
func (e *Engine) Rent(ctx context.Context, userID, bikeID int64) (RentResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Rent")
	defer span.End()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return RentResult{}, err
	}
	defer tx.Rollback()

	var uid int64
	err = tx.GetContext(ctx, &uid, rentSelectUser, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RentResult{}, ErrUserNotFound
		}
		return RentResult{}, err
	}

	var b struct {
		Status        bike.Status `db:"status"`
		WhereParked   *hub.Kind   `db:"where_parked"`
		AssignedHubID *int64      `db:"assigned_hub_id"`
	}
	err = tx.GetContext(ctx, &b, rentSelectBike, bikeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RentResult{}, ErrBikeNotFound
		}
		return RentResult{}, err
	}

	if b.Status != bike.StatusReturned {
		return RentResult{}, ErrBikeNotReturned
	}
	if b.WhereParked == nil || b.AssignedHubID == nil {
		return RentResult{}, ErrNotParked
	}
	loc := hub.ParkedLocation{Kind: *b.WhereParked, ID: *b.AssignedHubID}

	var openRental uuid.UUID
	err = tx.GetContext(ctx, &openRental, rentVerifyNoOpenRental, bikeID)
	if err == nil {
		return RentResult{}, ErrRentalOpen
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return RentResult{}, err
	}

	if err := takeParkedSlot(ctx, tx, loc); err != nil {
		return RentResult{}, err
	}

	startHubID, err := resolveOwningHub(ctx, tx, loc)
	if err != nil {
		return RentResult{}, err
	}

	res, err := tx.ExecContext(ctx, rentTakeHubBike, startHubID)
	if err != nil {
		return RentResult{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return RentResult{}, err
	} else if n == 0 {
		return RentResult{}, ErrHubInventoryDrift
	}

	_, err = tx.ExecContext(ctx, rentMarkUsing, bikeID)
	if err != nil {
		return RentResult{}, err
	}

	var result RentResult
	err = tx.GetContext(ctx, &result, rentInsert, uuid.New(), bikeID, userID, startHubID)
	if err != nil {
		return RentResult{}, err
	}

	return result, tx.Commit()
}

// takeParkedSlot decrements the occupied-slot counter of the bike's parking
// spot, guarded so it never drops below zero.
func takeParkedSlot(ctx context.Context, tx *sqlx.Tx, loc hub.ParkedLocation) error {
	query := rentTakeStationSlot
	if loc.Kind == hub.KindZone {
		query = rentTakeZoneSlot
	}

	res, err := tx.ExecContext(ctx, query, loc.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// resolveOwningHub maps a station or zone to its hub. Failure to resolve is
// an integrity error and aborts the caller's transaction.
func resolveOwningHub(ctx context.Context, tx *sqlx.Tx, loc hub.ParkedLocation) (int64, error) {
	query := rentStationHub
	if loc.Kind == hub.KindZone {
		query = rentZoneHub
	}

	var hubID int64
	err := tx.GetContext(ctx, &hubID, query, loc.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrHubUnresolvable
	}
	return hubID, err
}

const rentSelectUser = `SELECT user_id FROM users WHERE user_id = $1`

const rentSelectBike = `
SELECT status, where_parked, assigned_hub_id FROM bikes WHERE bike_id = $1 FOR UPDATE
`

const rentVerifyNoOpenRental = `SELECT rental_id FROM rentals WHERE bike_id = $1 AND ended_at IS NULL`

const rentTakeStationSlot = `
UPDATE stations SET parked_slots = parked_slots - 1 WHERE station_id = $1 AND parked_slots > 0
`

const rentTakeZoneSlot = `
UPDATE zones SET parked_slots = parked_slots - 1 WHERE zone_id = $1 AND parked_slots > 0
`

const rentStationHub = `SELECT hub_id FROM stations WHERE station_id = $1`
const rentZoneHub = `SELECT hub_id FROM zones WHERE zone_id = $1`

const rentTakeHubBike = `
UPDATE hubs SET current_bikes = current_bikes - 1 WHERE hub_id = $1 AND current_bikes > 0
`

const rentMarkUsing = `
UPDATE bikes
SET status = 'Using', assigned_hub_id = NULL, where_parked = NULL, last_rented_at = now()
WHERE bike_id = $1
`

const rentInsert = `
INSERT INTO rentals (rental_id, bike_id, user_id, start_hub_id, started_at, status)
VALUES ($1, $2, $3, $4, now(), 'Using')
RETURNING rental_id, started_at
`
