package hub

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(id int64, name string, lat, lon float64) Hub {
	return Hub{
		ID:        id,
		Name:      name,
		Latitude:  pgtype.Float8{Float64: lat, Valid: true},
		Longitude: pgtype.Float8{Float64: lon, Valid: true},
	}
}

func TestNearest(t *testing.T) {
	hubs := []Hub{
		located(1, "A", 0, 0),
		located(2, "B", 1, 1),
	}

	got, ok := Nearest(hubs, 0.1, 0.1)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
}

func TestNearest_SkipsHubsWithoutCoordinates(t *testing.T) {
	hubs := []Hub{
		{ID: 1, Name: "nowhere"},
		located(2, "B", 5, 5),
	}

	got, ok := Nearest(hubs, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
}

func TestNearest_NoLocatedHubs(t *testing.T) {
	_, ok := Nearest([]Hub{{ID: 1, Name: "nowhere"}}, 0, 0)
	assert.False(t, ok)

	_, ok = Nearest(nil, 0, 0)
	assert.False(t, ok)
}

// Equidistant hubs resolve to the first in iteration order. That is an
// arbitrary but stable choice; this test pins the behavior so a change is
// a deliberate product decision, not an accident.
func TestNearest_TieGoesToFirst(t *testing.T) {
	hubs := []Hub{
		located(1, "east", 0, 1),
		located(2, "west", 0, -1),
	}

	got, ok := Nearest(hubs, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "east", got.Name)
}
