package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbike/hubshare-backend/internal/middleware"
)

type rentRequest struct {
	BikeID any `json:"bike_id"`
	UserID any `json:"user_id"`
}

func (a *API) rentHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req rentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "a JSON body is required"})
		return
	}

	bikeID, err := asInt64(req.BikeID, "bike_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	result, err := a.eng.Rent(c.Request.Context(), userID, bikeID)
	if err != nil {
		status, reason := transitionStatus(err)
		countConflict("rent", status)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c, "rent failed", "bike_id", bikeID, "error", err)
		}
		c.JSON(status, gin.H{"ok": false, "reason": reason, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":        true,
		"rental_id": result.RentalID,
		"start_at":  result.StartedAt,
		"user_id":   userID,
	})
}

type lockRequest struct {
	BikeID any      `json:"bike_id"`
	UserID any      `json:"user_id"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

func (a *API) lockTemporaryHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a JSON body is required"})
		return
	}

	bikeID, err := asInt64(req.BikeID, "bike_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := a.eng.LockTemporary(c.Request.Context(), bikeID, userID, req.Lat, req.Lng)
	if err != nil {
		status, reason := transitionStatus(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c, "lock-temporary failed", "bike_id", bikeID, "error", err)
		}
		c.JSON(status, gin.H{"reason": reason, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bike_id":      bikeID,
		"user_id":      userID,
		"lock_id":      record.ID,
		"status":       "locked",
		"transferable": boolToInt(record.Transferable),
		"message":      "bike placed in temporary lock",
	})
}

func (a *API) lockTransferableHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a JSON body is required"})
		return
	}

	bikeID, err := asInt64(req.BikeID, "bike_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := a.eng.MarkTransferable(c.Request.Context(), bikeID, userID)
	if err != nil {
		status, reason := transitionStatus(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c, "lock-transferable failed", "bike_id", bikeID, "error", err)
		}
		c.JSON(status, gin.H{"reason": reason, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bike_id":      bikeID,
		"user_id":      userID,
		"lock_id":      record.ID,
		"status":       "locked",
		"transferable": boolToInt(record.Transferable),
		"message":      "bike marked transferable; another user may take it without a formal return",
	})
}

type zoneReturnRequest struct {
	HubID  any      `json:"hub_id"`
	BikeID any      `json:"bike_id"`
	UserID any      `json:"user_id"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

func (a *API) zoneReturnHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req zoneReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":      false,
			"reason":  "missing_params",
			"message": "hub_id, bike_id and user_id are required",
		})
		return
	}

	hubID, err := asInt64(req.HubID, "hub_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}
	bikeID, err := asInt64(req.BikeID, "bike_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}
	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}

	result, err := a.eng.ReturnToZone(c.Request.Context(), hubID, bikeID, userID, req.Lat, req.Lng)
	if err != nil {
		status, reason := transitionStatus(err)
		countConflict("zone_return", status)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c, "zone-return failed", "bike_id", bikeID, "error", err)
		}
		c.JSON(status, gin.H{"ok": false, "reason": reason, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"zone_return":  true,
		"ride_id":      result.RentalID,
		"bike_id":      bikeID,
		"user_id":      userID,
		"duration_min": result.DurationMin,
		"message":      "hub was full; ride closed with a zone return, bike left available and locked",
	})
}

type stationReturnRequest struct {
	StationID any `json:"station_id"`
	BikeID    any `json:"bike_id"`
	UserID    any `json:"user_id"`
}

func (a *API) stationReturnHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req stationReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":      false,
			"reason":  "missing_params",
			"message": "station_id, bike_id and user_id are required",
		})
		return
	}

	stationID, err := asInt64(req.StationID, "station_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}
	bikeID, err := asInt64(req.BikeID, "bike_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}
	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_params", "message": err.Error()})
		return
	}

	result, err := a.eng.ReturnToStation(c.Request.Context(), bikeID, userID, stationID)
	if err != nil {
		status, reason := transitionStatus(err)
		countConflict("station_return", status)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c, "station-return failed", "bike_id", bikeID, "error", err)
		}
		c.JSON(status, gin.H{"ok": false, "reason": reason, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"ride_id":      result.RentalID,
		"bike_id":      bikeID,
		"user_id":      userID,
		"end_hub_id":   result.EndHubID,
		"duration_min": result.DurationMin,
	})
}
