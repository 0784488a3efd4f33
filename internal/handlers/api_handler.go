package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerflow-dashboard/internal/backend"
	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
)

// HealthCheck reports this server and, when reachable, the gateway.
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{"status": "ok", "gateway": "ok"}
	if h.Gateway != nil {
		if err := h.Gateway.Ping(c.Request.Context()); err != nil {
			resp["gateway"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// DashboardJSON returns the same state the index page draws.
func (h *Handler) DashboardJSON(c *gin.Context) {
	if err := h.Dashboard.Load(c.Request.Context()); err != nil {
		c.JSON(HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	snap := h.Dashboard.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"jobs":         snap.Jobs,
		"resumes":      snap.Resumes,
		"busy_job_ids": snap.BusyJobIDs(),
		"loaded_at":    snap.LoadedAt,
	})
}

// TrackerJSON returns tracker stats plus the entries for ?date=.
func (h *Handler) TrackerJSON(c *gin.Context) {
	if err := h.Dashboard.Load(c.Request.Context()); err != nil {
		c.JSON(HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	entries := h.Dashboard.Tracker()
	filtered, err := h.Tracker.FilterByDate(entries, c.Query("date"))
	if err != nil {
		c.JSON(HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":   h.Tracker.Stats(entries, h.Now()),
		"date":    c.Query("date"),
		"entries": filtered,
	})
}

// HTTPStatus maps a dashboard error to a response code.
func HTTPStatus(err error) int {
	switch {
	case dtos.IsValidation(err), errors.Is(err, services.ErrNoResumeSelected):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAnalysisPending):
		return http.StatusConflict
	case errors.Is(err, services.ErrJobNotFound), backend.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBackendDown), backend.IsUnreachable(err):
		return http.StatusBadGateway
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func alertText(err error) string {
	var ve *dtos.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Please check the %s field: it %s.", ve.Field, ve.Message)
	}
	return err.Error()
}
