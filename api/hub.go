package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusbike/hubshare-backend/bike"
	"github.com/campusbike/hubshare-backend/hub"
	"github.com/campusbike/hubshare-backend/internal/middleware"
	"github.com/campusbike/hubshare-backend/lock"
	"github.com/campusbike/hubshare-backend/rental"
)

type hubResponse struct {
	HubID     int64    `json:"hub_id"`
	HubName   string   `json:"hub_name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ParkedSum int      `json:"parked_sum"`
	TotalSum  int      `json:"total_sum"`
}

func (a *API) hubsHandler(c *gin.Context) {
	occupancy, err := a.hr.GetOccupancy(c.Request.Context())
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list hub occupancy", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	hubs := make([]hubResponse, 0, len(occupancy))
	for _, o := range occupancy {
		hubs = append(hubs, toHubResponse(o))
	}
	c.JSON(http.StatusOK, hubs)
}

func toHubResponse(o hub.Occupancy) hubResponse {
	resp := hubResponse{
		HubID:     o.HubID,
		HubName:   o.HubName,
		ParkedSum: o.ParkedSum,
		TotalSum:  o.TotalSum,
	}
	if o.Latitude.Valid {
		resp.Latitude = &o.Latitude.Float64
	}
	if o.Longitude.Valid {
		resp.Longitude = &o.Longitude.Float64
	}
	return resp
}

func (a *API) hubDetailHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hub id must be an integer"})
		return
	}

	h, err := a.hr.GetHub(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to get hub", "hub_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	bikes, err := a.br.ListByOwningHub(c.Request.Context(), id)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list hub bikes", "hub_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hub_id":        h.ID,
		"hub_name":      h.Name,
		"capacity":      h.Capacity,
		"current_bikes": h.CurrentBikes,
		"full":          h.Full(),
		"bikes":         bikes,
	})
}

func (a *API) bikesHandler(c *gin.Context) {
	bikes, err := a.br.GetBikes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bikes)
}

type bikeResponse struct {
	ID            int64          `json:"bike_id"`
	Label         string         `json:"label"`
	Status        bike.Status    `json:"status"`
	LockState     bike.LockState `json:"lock_state"`
	Available     bool           `json:"is_available"`
	WhereParked   *hub.Kind      `json:"where_parked"`
	AssignedHubID *int64         `json:"assigned_hub_id"`
	Hold          *lock.Record   `json:"hold"`
}

func (a *API) bikeHandler(c *gin.Context) {
	label := c.Param("label")

	b, err := a.br.GetBike(c.Request.Context(), label)
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := bikeResponse{
		ID:            b.ID,
		Label:         b.Label,
		Status:        b.Status,
		LockState:     b.LockState,
		Available:     b.Available,
		WhereParked:   b.WhereParked,
		AssignedHubID: b.AssignedHubID,
	}

	hold, err := a.lr.ActiveRecordForBike(c.Request.Context(), b.ID)
	if err == nil {
		resp.Hold = &hold
	} else if !errors.Is(err, lock.ErrNoActiveLock) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

type rideState struct {
	InProgress bool           `json:"in_progress"`
	Rental     *rental.Rental `json:"rental,omitempty"`
}

func (a *API) currentRideHandler(c *gin.Context) {
	userID, err := asInt64(c.Query("user_id"), "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride, err := a.rr.ActiveRentalForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, rental.ErrNoActiveRental) {
			c.JSON(http.StatusOK, rideState{InProgress: false})
			return
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to get current ride", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rideState{InProgress: true, Rental: &ride})
}

func (a *API) rideHistoryHandler(c *gin.Context) {
	userID, err := asInt64(c.Query("user_id"), "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rides, err := a.rr.History(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list ride history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, rides)
}

func (a *API) bikeLockHistoryHandler(c *gin.Context) {
	label := c.Param("label")

	b, err := a.br.GetBike(c.Request.Context(), label)
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	records, err := a.lr.History(c.Request.Context(), b.ID)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list lock history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, records)
}
