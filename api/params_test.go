package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbike/hubshare-backend/transition"
)

func TestAsInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr string
	}{
		{name: "json number", in: float64(42), want: 42},
		{name: "numeric string", in: "42", want: 42},
		{name: "padded string", in: " 7 ", want: 7},
		{name: "missing", in: nil, wantErr: "bike_id is required"},
		{name: "missing query param", in: "", wantErr: "bike_id is required"},
		{name: "blank string", in: "   ", wantErr: "bike_id is required"},
		{name: "fractional number", in: 1.5, wantErr: "bike_id must be an integer"},
		{name: "word", in: "soon", wantErr: "bike_id must be an integer"},
		{name: "bool", in: true, wantErr: "bike_id must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asInt64(tt.in, "bike_id")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{transition.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{transition.ErrBikeNotFound, http.StatusNotFound, "bike_not_found"},
		{transition.ErrNoActiveRide, http.StatusNotFound, "no_active_ride"},
		{transition.ErrNotLockHolder, http.StatusForbidden, "not_lock_holder"},
		{transition.ErrBikeNotReturned, http.StatusConflict, "bike_not_returned"},
		{transition.ErrSlotUnavailable, http.StatusConflict, "slot_unavailable"},
		{transition.ErrRentalOpen, http.StatusConflict, "rental_in_progress"},
		{transition.ErrHubNotFull, http.StatusConflict, "hub_not_full"},
		{transition.ErrStationFull, http.StatusConflict, "station_full"},
		{transition.ErrHubInventoryDrift, http.StatusInternalServerError, "integrity_violation"},
		{fmt.Errorf("query failed"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantReason, func(t *testing.T) {
			status, reason := transitionStatus(fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
