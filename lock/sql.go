package lock

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNoActiveLock = errors.New("no active lock")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ActiveRecordForBike returns the live hold on a bike, if any.
func (r *Repository) ActiveRecordForBike(ctx context.Context, bikeID int64) (Record, error) {
	var record Record
	err := r.db.GetContext(ctx, &record, activeRecordForBike, bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoActiveLock
	}
	return record, err
}

const activeRecordForBike = `
SELECT * FROM lock_records WHERE bike_id = $1 AND is_active ORDER BY locked_at DESC LIMIT 1
`

// ActiveRecord returns the live hold on a bike by a specific user, if any.
func (r *Repository) ActiveRecord(ctx context.Context, bikeID, userID int64) (Record, error) {
	var record Record
	err := r.db.GetContext(ctx, &record, activeRecord, bikeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoActiveLock
	}
	return record, err
}

const activeRecord = `
SELECT * FROM lock_records WHERE bike_id = $1 AND user_id = $2 AND is_active
ORDER BY locked_at DESC LIMIT 1
`

func (r *Repository) History(ctx context.Context, bikeID int64) ([]Record, error) {
	var records []Record
	err := r.db.SelectContext(ctx, &records, historyForBike, bikeID)
	return records, err
}

const historyForBike = `SELECT * FROM lock_records WHERE bike_id = $1 ORDER BY locked_at DESC`
