package transition

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/campusbike/hubshare-backend/lock"
)

// LockTemporary parks a bike mid-ride: physically locked, unavailable to
// anyone else. Re-locking is safe in bike state, but every call appends a
// ledger row; the ledger is a history, not a cache.
func (e *Engine) LockTemporary(ctx context.Context, bikeID, userID int64, lat, lng *float64) (lock.Record, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "LockTemporary")
	defer span.End()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return lock.Record{}, err
	}
	defer tx.Rollback()

	var uid int64
	err = tx.GetContext(ctx, &uid, rentSelectUser, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock.Record{}, ErrUserNotFound
		}
		return lock.Record{}, err
	}

	var id int64
	err = tx.GetContext(ctx, &id, lockSelectBike, bikeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock.Record{}, ErrBikeNotFound
		}
		return lock.Record{}, err
	}

	_, err = tx.ExecContext(ctx, lockDeactivate, bikeID, userID)
	if err != nil {
		return lock.Record{}, err
	}

	var record lock.Record
	err = tx.GetContext(ctx, &record, lockInsert, uuid.New(), bikeID, userID, lat, lng, false)
	if err != nil {
		return lock.Record{}, err
	}

	_, err = tx.ExecContext(ctx, lockBikeUnavailable, bikeID)
	if err != nil {
		return lock.Record{}, err
	}

	return record, tx.Commit()
}

// MarkTransferable opens the hand-off window: the bike stays physically
// locked but is advertised as takeable. The ownership check and the flip
// run in one transaction so a concurrent deactivation cannot slip between
// them. Calling it again while still the active holder is a no-op that
// still succeeds.
func (e *Engine) MarkTransferable(ctx context.Context, bikeID, userID int64) (lock.Record, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MarkTransferable")
	defer span.End()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return lock.Record{}, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, lockSelectBike, bikeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock.Record{}, ErrBikeNotFound
		}
		return lock.Record{}, err
	}

	var lockID uuid.UUID
	err = tx.GetContext(ctx, &lockID, transferSelectActive, bikeID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock.Record{}, ErrNotLockHolder
		}
		return lock.Record{}, err
	}

	var record lock.Record
	err = tx.GetContext(ctx, &record, transferFlip, lockID)
	if err != nil {
		return lock.Record{}, err
	}

	_, err = tx.ExecContext(ctx, transferBikeAvailable, bikeID)
	if err != nil {
		return lock.Record{}, err
	}

	return record, tx.Commit()
}

const lockSelectBike = `SELECT bike_id FROM bikes WHERE bike_id = $1 FOR UPDATE`

const lockDeactivate = `
UPDATE lock_records SET is_active = false WHERE bike_id = $1 AND user_id = $2 AND is_active
`

const lockInsert = `
INSERT INTO lock_records (lock_id, bike_id, user_id, locked_at, lat, lng, transferable, is_active)
VALUES ($1, $2, $3, now(), $4, $5, $6, true)
RETURNING *
`

const lockBikeUnavailable = `
UPDATE bikes SET lock_state = 'locked', is_available = false WHERE bike_id = $1
`

const transferSelectActive = `
SELECT lock_id FROM lock_records
WHERE bike_id = $1 AND user_id = $2 AND is_active
ORDER BY locked_at DESC
LIMIT 1
FOR UPDATE
`

const transferFlip = `UPDATE lock_records SET transferable = true WHERE lock_id = $1 RETURNING *`

const transferBikeAvailable = `UPDATE bikes SET is_available = true WHERE bike_id = $1`
