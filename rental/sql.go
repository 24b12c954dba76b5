package rental

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var ErrNoActiveRental = errors.New("no rental in progress")

// ActiveRentalForUser finds the caller's open ride, if any.
func (r *Repository) ActiveRentalForUser(ctx context.Context, userID int64) (Rental, error) {
	var rental Rental
	err := r.db.GetContext(ctx, &rental, activeRentalForUser, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, ErrNoActiveRental
	}
	return rental, err
}

const activeRentalForUser = `
SELECT * FROM rentals WHERE user_id = $1 AND ended_at IS NULL ORDER BY started_at DESC LIMIT 1
`

// ActiveRentalForBike finds the open ride on a bike, if any.
func (r *Repository) ActiveRentalForBike(ctx context.Context, bikeID int64) (Rental, error) {
	var rental Rental
	err := r.db.GetContext(ctx, &rental, activeRentalForBike, bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, ErrNoActiveRental
	}
	return rental, err
}

const activeRentalForBike = `
SELECT * FROM rentals WHERE bike_id = $1 AND ended_at IS NULL ORDER BY started_at DESC LIMIT 1
`

func (r *Repository) History(ctx context.Context, userID int64) ([]Rental, error) {
	var rentals []Rental
	err := r.db.SelectContext(ctx, &rentals, historyForUser, userID)
	return rentals, err
}

const historyForUser = `SELECT * FROM rentals WHERE user_id = $1 ORDER BY started_at DESC`
