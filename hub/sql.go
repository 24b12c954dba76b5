package hub

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("hub not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetHubs(ctx context.Context) ([]Hub, error) {
	var hubs []Hub
	err := r.db.SelectContext(ctx, &hubs, getHubs)
	return hubs, err
}

const getHubs = `SELECT * FROM hubs ORDER BY hub_id`

func (r *Repository) GetHub(ctx context.Context, id int64) (Hub, error) {
	var hub Hub
	err := r.db.GetContext(ctx, &hub, getHub, id)
	if errors.Is(err, sql.ErrNoRows) {
		return hub, ErrNotFound
	}
	return hub, err
}

const getHub = `SELECT * FROM hubs WHERE hub_id = $1`

func (r *Repository) GetHubByName(ctx context.Context, name string) (Hub, error) {
	var hub Hub
	err := r.db.GetContext(ctx, &hub, getHubByName, name)
	if errors.Is(err, sql.ErrNoRows) {
		return hub, ErrNotFound
	}
	return hub, err
}

const getHubByName = `SELECT * FROM hubs WHERE hub_name = $1`

func (r *Repository) GetStation(ctx context.Context, id int64) (Station, error) {
	var station Station
	err := r.db.GetContext(ctx, &station, getStation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return station, ErrNotFound
	}
	return station, err
}

const getStation = `SELECT * FROM stations WHERE station_id = $1`

func (r *Repository) GetZone(ctx context.Context, id int64) (Zone, error) {
	var zone Zone
	err := r.db.GetContext(ctx, &zone, getZone, id)
	if errors.Is(err, sql.ErrNoRows) {
		return zone, ErrNotFound
	}
	return zone, err
}

const getZone = `SELECT * FROM zones WHERE zone_id = $1`

// CountAvailable counts the rentable bikes at the named hub. The count runs
// as a single statement so concurrent transitions can never be observed
// half-applied. An unknown hub name yields Found=false with a nil error.
func (r *Repository) CountAvailable(ctx context.Context, hubName string) (Availability, error) {
	h, err := r.GetHubByName(ctx, hubName)
	if errors.Is(err, ErrNotFound) {
		return Availability{HubName: hubName, Found: false}, nil
	}
	if err != nil {
		return Availability{}, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, countAvailable, h.ID)
	if err != nil {
		return Availability{}, err
	}

	return Availability{HubName: hubName, Found: true, AvailableBikes: count}, nil
}

const countAvailable = `
SELECT count(*) FROM bikes b
LEFT JOIN stations s ON b.where_parked = 'Station' AND b.assigned_hub_id = s.station_id
LEFT JOIN zones z ON b.where_parked = 'Zone' AND b.assigned_hub_id = z.zone_id
WHERE COALESCE(s.hub_id, z.hub_id) = $1
  AND b.status = 'Returned'
  AND b.is_active
  AND NOT b.is_under_repair
  AND NOT b.is_retired
`

// GetOccupancy lists per-hub slot usage summed over stations.
func (r *Repository) GetOccupancy(ctx context.Context) ([]Occupancy, error) {
	var occupancy []Occupancy
	err := r.db.SelectContext(ctx, &occupancy, getOccupancy)
	return occupancy, err
}

const getOccupancy = `
SELECT h.hub_id, h.hub_name, h.latitude, h.longitude,
       COALESCE(SUM(s.parked_slots), 0) AS parked_sum,
       COALESCE(SUM(s.total_slots), 0) AS total_sum
FROM hubs h
LEFT JOIN stations s ON s.hub_id = h.hub_id
GROUP BY h.hub_id, h.hub_name, h.latitude, h.longitude
ORDER BY h.hub_id
`
