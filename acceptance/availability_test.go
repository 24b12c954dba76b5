package acceptance

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func TestAvailableBikes(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	hubID := ts.CreateTestHub(t, "Main Gate", 10, 4, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 3, 5)
	zoneID := ts.CreateTestZone(t, hubID, 1, 4)

	otherHub := ts.CreateTestHub(t, "Library", 10, 1, nil, nil)
	otherStation := ts.CreateTestStation(t, otherHub, 1, 5)

	// Counted: a rentable bike at the station and one in the zone.
	ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)
	ts.CreateTestBikeAtZone(t, "BIKE-002", zoneID)

	// Excluded: wrong hub, under repair, retired, deactivated.
	ts.CreateTestBikeAtStation(t, "BIKE-ELSEWHERE", otherStation)
	for i, column := range []string{"is_under_repair", "is_retired"} {
		bikeID := ts.CreateTestBikeAtStation(t, fmt.Sprintf("BIKE-OUT-%d", i), stationID)
		if _, err := ts.DB.Exec("UPDATE bikes SET "+column+" = true WHERE bike_id = $1", bikeID); err != nil {
			t.Fatalf("failed to flag bike: %v", err)
		}
	}
	inactive := ts.CreateTestBikeAtStation(t, "BIKE-INACTIVE", stationID)
	if _, err := ts.DB.Exec("UPDATE bikes SET is_active = false WHERE bike_id = $1", inactive); err != nil {
		t.Fatalf("failed to deactivate bike: %v", err)
	}

	w := ts.GET("/api/available-bikes?hub_name=" + url.QueryEscape("Main Gate"))
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["found"] != true {
		t.Errorf("expected found=true, got %v", body["found"])
	}
	if body["hub_name"] != "Main Gate" {
		t.Errorf("expected hub_name Main Gate, got %v", body["hub_name"])
	}
	if body["available_bikes"] != float64(2) {
		t.Errorf("expected 2 available bikes, got %v", body["available_bikes"])
	}
	if body["content"] != "bikes are waiting for you" {
		t.Errorf("expected summarizer content, got %v", body["content"])
	}
}

func TestAvailableBikes_UnknownHub(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.GET("/api/available-bikes?hub_name=Atlantis")
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["found"] != false {
		t.Errorf("expected found=false, got %v", body["found"])
	}
	if body["available_bikes"] != float64(0) {
		t.Errorf("expected 0 available bikes, got %v", body["available_bikes"])
	}
	if body["error"] == nil {
		t.Errorf("expected an error annotation for an unknown hub")
	}
	// Nothing to summarize for a miss.
	if ts.Summarizer.LastMessages != nil {
		t.Errorf("expected summarizer not to be called")
	}
}

func TestAvailableBikes_MissingHubName(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.GET("/api/available-bikes")
	requireStatus(t, w, http.StatusBadRequest)
}

// A summarizer outage degrades to the structured count, never a failure.
func TestAvailableBikes_SummarizerDown(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.Summarizer.Err = errors.New("upstream timeout")

	hubID := ts.CreateTestHub(t, "Main Gate", 10, 1, nil, nil)
	stationID := ts.CreateTestStation(t, hubID, 1, 5)
	ts.CreateTestBikeAtStation(t, "BIKE-001", stationID)

	w := ts.GET("/api/available-bikes?hub_name=" + url.QueryEscape("Main Gate"))
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["found"] != true || body["available_bikes"] != float64(1) {
		t.Errorf("expected structured count to survive the outage, got %v", body)
	}
	if body["content"] != nil {
		t.Errorf("expected no content, got %v", body["content"])
	}
	if body["error"] == nil {
		t.Errorf("expected an error annotation")
	}
}

func TestAvailableNearbyBikes(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	latA, lonA := 0.0, 0.0
	latB, lonB := 1.0, 1.0
	hubA := ts.CreateTestHub(t, "A", 10, 1, &latA, &lonA)
	ts.CreateTestHub(t, "B", 10, 1, &latB, &lonB)

	stationA := ts.CreateTestStation(t, hubA, 1, 5)
	ts.CreateTestBikeAtStation(t, "BIKE-A", stationA)

	w := ts.GET("/api/available-nearby-bikes?lat=0.1&lon=0.1")
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["hub_name"] != "A" {
		t.Errorf("expected nearest hub A, got %v", body["hub_name"])
	}
	if body["available_bikes"] != float64(1) {
		t.Errorf("expected 1 available bike, got %v", body["available_bikes"])
	}
}

func TestAvailableNearbyBikes_MissingCoordinates(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.GET("/api/available-nearby-bikes?lat=0.1")
	requireStatus(t, w, http.StatusBadRequest)

	body := decodeBody(t, w)
	if body["found"] != false {
		t.Errorf("expected found=false, got %v", body["found"])
	}
}

func TestAvailableNearbyBikes_NoLocatedHubs(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	// Hubs exist but none carry coordinates.
	ts.CreateTestHub(t, "Main Gate", 10, 1, nil, nil)

	w := ts.GET("/api/available-nearby-bikes?lat=0.1&lon=0.1")
	requireStatus(t, w, http.StatusBadRequest)
}
