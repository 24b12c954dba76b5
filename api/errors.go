package api

import (
	"errors"
	"net/http"

	"github.com/campusbike/hubshare-backend/internal/middleware"
	"github.com/campusbike/hubshare-backend/transition"
)

// transitionStatus maps an engine error onto an HTTP status and a stable
// reason code. Integrity violations surface as 500s; they are the system's
// fault, not the caller's.
func transitionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, transition.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, transition.ErrBikeNotFound):
		return http.StatusNotFound, "bike_not_found"
	case errors.Is(err, transition.ErrStationNotFound):
		return http.StatusNotFound, "station_not_found"
	case errors.Is(err, transition.ErrNoActiveRide):
		return http.StatusNotFound, "no_active_ride"
	case errors.Is(err, transition.ErrNotLockHolder):
		return http.StatusForbidden, "not_lock_holder"
	case errors.Is(err, transition.ErrBikeNotReturned):
		return http.StatusConflict, "bike_not_returned"
	case errors.Is(err, transition.ErrNotParked):
		return http.StatusConflict, "bike_not_parked"
	case errors.Is(err, transition.ErrSlotUnavailable):
		return http.StatusConflict, "slot_unavailable"
	case errors.Is(err, transition.ErrRentalOpen):
		return http.StatusConflict, "rental_in_progress"
	case errors.Is(err, transition.ErrHubNotFull):
		return http.StatusConflict, "hub_not_full"
	case errors.Is(err, transition.ErrStationFull):
		return http.StatusConflict, "station_full"
	case errors.Is(err, transition.ErrHubFull):
		return http.StatusConflict, "hub_full"
	case errors.Is(err, transition.ErrHubUnresolvable),
		errors.Is(err, transition.ErrHubInventoryDrift):
		return http.StatusInternalServerError, "integrity_violation"
	}
	return http.StatusInternalServerError, "internal_error"
}

func countConflict(operation string, status int) {
	if status == http.StatusConflict {
		middleware.TransitionConflictsTotal.WithLabelValues(operation).Inc()
	}
}
