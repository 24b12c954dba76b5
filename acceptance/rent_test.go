package acceptance

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
)

func TestRent(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "rider")
	hubID := ts.CreateTestHub(t, "Main Gate", 10, 5, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 3, 5)
	bikeID := ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": userID})
	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body["ok"])
	}
	if body["rental_id"] == nil || body["rental_id"] == "" {
		t.Errorf("expected a rental_id, got %v", body["rental_id"])
	}

	if got := ts.getInt(t, "SELECT parked_slots FROM stations WHERE station_id = $1", stationID); got != 2 {
		t.Errorf("expected station parked_slots 2, got %d", got)
	}
	if got := ts.getInt(t, "SELECT current_bikes FROM hubs WHERE hub_id = $1", hubID); got != 4 {
		t.Errorf("expected hub current_bikes 4, got %d", got)
	}

	var status string
	if err := ts.DB.Get(&status, "SELECT status FROM bikes WHERE bike_id = $1", bikeID); err != nil {
		t.Fatalf("failed to read bike: %v", err)
	}
	if status != "Using" {
		t.Errorf("expected bike status Using, got %s", status)
	}
	if got := ts.getInt(t, "SELECT count(*) FROM bikes WHERE bike_id = $1 AND assigned_hub_id IS NULL", bikeID); got != 1 {
		t.Errorf("expected bike to be unparked after rent")
	}
	if got := ts.getInt(t, "SELECT count(*) FROM rentals WHERE bike_id = $1 AND ended_at IS NULL", bikeID); got != 1 {
		t.Errorf("expected one open rental, got %d", got)
	}
}

func TestRent_FromZone(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "rider")
	hubID := ts.CreateTestHub(t, "Library", 10, 2, nil, nil)
	zoneID := ts.CreateTestZone(t, hubID, 2, 4)
	bikeID := ts.CreateTestBikeAtZone(t, "BIKE-Z01", zoneID)

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": userID})
	requireStatus(t, w, http.StatusCreated)

	if got := ts.getInt(t, "SELECT parked_slots FROM zones WHERE zone_id = $1", zoneID); got != 1 {
		t.Errorf("expected zone parked_slots 1, got %d", got)
	}
	if got := ts.getInt(t, "SELECT current_bikes FROM hubs WHERE hub_id = $1", hubID); got != 1 {
		t.Errorf("expected hub current_bikes 1, got %d", got)
	}
}

func TestRent_BikeAlreadyRented(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "rider")
	otherID := ts.CreateTestUser(t, "latecomer")
	hubID := ts.CreateTestHub(t, "Main Gate", 10, 5, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 3, 5)
	bikeID := ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": userID})
	requireStatus(t, w, http.StatusCreated)

	w = ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": otherID})
	requireStatus(t, w, http.StatusConflict)

	body := decodeBody(t, w)
	if body["reason"] != "bike_not_returned" {
		t.Errorf("expected reason bike_not_returned, got %v", body["reason"])
	}

	// The losing request must not touch any counter.
	if got := ts.getInt(t, "SELECT parked_slots FROM stations WHERE station_id = $1", stationID); got != 2 {
		t.Errorf("expected station parked_slots 2, got %d", got)
	}
	if got := ts.getInt(t, "SELECT current_bikes FROM hubs WHERE hub_id = $1", hubID); got != 4 {
		t.Errorf("expected hub current_bikes 4, got %d", got)
	}
}

func TestRent_UnknownUser(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	hubID := ts.CreateTestHub(t, "Main Gate", 10, 5, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 3, 5)
	bikeID := ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": 999999})
	requireStatus(t, w, http.StatusNotFound)

	if body := decodeBody(t, w); body["reason"] != "user_not_found" {
		t.Errorf("expected reason user_not_found, got %v", body["reason"])
	}
}

func TestRent_UnknownBike(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "rider")

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": 999999, "user_id": userID})
	requireStatus(t, w, http.StatusNotFound)

	if body := decodeBody(t, w); body["reason"] != "bike_not_found" {
		t.Errorf("expected reason bike_not_found, got %v", body["reason"])
	}
}

func TestRent_BikeNotParked(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "rider")

	// Returned but floating: no station or zone assignment.
	var bikeID int64
	err := ts.DB.Get(&bikeID, `
		INSERT INTO bikes (label, status) VALUES ('BIKE-FLOAT', 'Returned') RETURNING bike_id
	`)
	if err != nil {
		t.Fatalf("failed to create test bike: %v", err)
	}

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": userID})
	requireStatus(t, w, http.StatusConflict)

	if body := decodeBody(t, w); body["reason"] != "bike_not_parked" {
		t.Errorf("expected reason bike_not_parked, got %v", body["reason"])
	}
}

func TestRent_MissingParams(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.POST("/api/rent", map[string]interface{}{"bike_id": 1})
	requireStatus(t, w, http.StatusBadRequest)

	w = ts.POST("/api/rent", map[string]interface{}{"bike_id": "soon", "user_id": 1})
	requireStatus(t, w, http.StatusBadRequest)
}

// Many riders race for the same bike; exactly one rent may succeed and the
// slot and hub counters must come out consistent, never negative.
func TestRent_Concurrent(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	hubID := ts.CreateTestHub(t, "Main Gate", 10, 1, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 1, 5)
	bikeID := ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)

	const riders = 8
	userIDs := make([]int64, riders)
	for i := range userIDs {
		userIDs[i] = ts.CreateTestUser(t, fmt.Sprintf("rider-%d", i))
	}

	var wg sync.WaitGroup
	codes := make(chan int, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			w := ts.POST("/api/rent", map[string]interface{}{"bike_id": bikeID, "user_id": userID})
			codes <- w.Code
		}(userIDs[i])
	}
	wg.Wait()
	close(codes)

	var created, conflicts int
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one successful rent, got %d", created)
	}
	if conflicts != riders-1 {
		t.Errorf("expected %d conflicts, got %d", riders-1, conflicts)
	}

	if got := ts.getInt(t, "SELECT parked_slots FROM stations WHERE station_id = $1", stationID); got != 0 {
		t.Errorf("expected station parked_slots 0, got %d", got)
	}
	if got := ts.getInt(t, "SELECT current_bikes FROM hubs WHERE hub_id = $1", hubID); got != 0 {
		t.Errorf("expected hub current_bikes 0, got %d", got)
	}
	if got := ts.getInt(t, "SELECT count(*) FROM rentals WHERE bike_id = $1 AND ended_at IS NULL", bikeID); got != 1 {
		t.Errorf("expected one open rental, got %d", got)
	}
}
