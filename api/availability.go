package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusbike/hubshare-backend/hub"
	"github.com/campusbike/hubshare-backend/internal/middleware"
	"github.com/campusbike/hubshare-backend/summarize"
)

const summarizeSystemPrompt = "You are the assistant for a campus bike share service. " +
	"You tell users how many bikes are available at the location they asked about. " +
	"Rules: 1) keep a friendly, warm tone; 2) answer in one or two short sentences; " +
	"3) no background information or verbose explanations; 4) if there are no bikes, " +
	"suggest checking a nearby hub."

func (a *API) availableBikesHandler(c *gin.Context) {
	hubName := c.Query("hub_name")
	if hubName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hub_name query parameter is required"})
		return
	}

	avail, err := a.hr.CountAvailable(c.Request.Context(), hubName)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to count available bikes", "hub_name", hubName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	a.respondAvailability(c, avail)
}

func (a *API) availableNearbyBikesHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"hub_name":        nil,
			"found":           false,
			"available_bikes": 0,
			"error":           "lat and lon query parameters are required (float)",
		})
		return
	}

	hubs, err := a.hr.GetHubs(c.Request.Context())
	if err != nil {
		logger.ErrorContext(c, "failed to list hubs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	nearest, ok := hub.Nearest(hubs, lat, lon)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"hub_name":        nil,
			"found":           false,
			"available_bikes": 0,
			"error":           "no hub with coordinates nearby",
		})
		return
	}

	avail, err := a.hr.CountAvailable(c.Request.Context(), nearest.Name)
	if err != nil {
		logger.ErrorContext(c, "failed to count available bikes", "hub_name", nearest.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	a.respondAvailability(c, avail)
}

// respondAvailability renders the structured count, with a conversational
// sentence when the summarizer cooperates. The count is already computed:
// a summarizer failure degrades to the bare structured result with an error
// annotation, it never turns into a request failure.
func (a *API) respondAvailability(c *gin.Context, avail hub.Availability) {
	resp := gin.H{
		"hub_name":        avail.HubName,
		"found":           avail.Found,
		"available_bikes": avail.AvailableBikes,
	}

	if !avail.Found {
		resp["error"] = fmt.Sprintf("hub %q was not found", avail.HubName)
		c.JSON(http.StatusOK, resp)
		return
	}

	messages := []summarize.Message{
		{Role: "system", Content: summarizeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Turn these values into one natural sentence. hub: %s, available bikes: %d",
			avail.HubName, avail.AvailableBikes)},
	}

	content, err := a.sc.Summarize(c.Request.Context(), messages)
	if err != nil {
		middleware.GetLogger(c).WarnContext(c, "summarizer unavailable", "error", err)
		resp["error"] = err.Error()
	} else {
		resp["content"] = content
	}

	c.JSON(http.StatusOK, resp)
}
