package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikes)
	return bikes, err
}

const getBikes = `SELECT * FROM bikes ORDER BY bike_id`

func (r *Repository) GetBike(ctx context.Context, label string) (Bike, error) {
	var bike Bike

	err := r.db.GetContext(ctx, &bike, getBike, label)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}

	return bike, err
}

const getBike = `SELECT * FROM bikes WHERE label = $1`

func (r *Repository) GetBikeByID(ctx context.Context, id int64) (Bike, error) {
	var bike Bike

	err := r.db.GetContext(ctx, &bike, getBikeByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}

	return bike, err
}

const getBikeByID = `SELECT * FROM bikes WHERE bike_id = $1`

// ListByOwningHub fetches the bikes docked at any station or zone belonging
// to the given hub.
func (r *Repository) ListByOwningHub(ctx context.Context, hubID int64) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, listByOwningHub, hubID)
	return bikes, err
}

const listByOwningHub = `
SELECT b.* FROM bikes b
LEFT JOIN stations s ON b.where_parked = 'Station' AND b.assigned_hub_id = s.station_id
LEFT JOIN zones z ON b.where_parked = 'Zone' AND b.assigned_hub_id = z.zone_id
WHERE COALESCE(s.hub_id, z.hub_id) = $1
ORDER BY b.bike_id
`
