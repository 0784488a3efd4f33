// Package handlers serves the dashboard as server-rendered pages plus a small JSON API.
package handlers

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
)

// FileLinker turns a resume record into a link the browser can open.
type FileLinker interface {
	FileURL(r models.Resume) string
}

// Pinger checks that the gateway answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the shared services. One instance serves every request.
type Handler struct {
	Dashboard     *services.DashboardService
	Tracker       *services.TrackerService
	Files         FileLinker
	Gateway       Pinger
	RequireJobURL bool
	Now           func() time.Time
}

func NewHandler(dashboard *services.DashboardService, tracker *services.TrackerService, files FileLinker, gateway Pinger) *Handler {
	return &Handler{
		Dashboard: dashboard,
		Tracker:   tracker,
		Files:     files,
		Gateway:   gateway,
		Now:       time.Now,
	}
}

// NewRouter builds the gin engine with every dashboard route.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()
	router.Use(RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/", h.Index)
	router.GET("/resumes", h.Resumes)
	router.POST("/resumes", h.UploadResume)
	router.POST("/jobs", h.CreateJob)
	router.POST("/jobs/:id/analyze", h.AnalyzeJob)
	router.GET("/jobs/:id/delete", h.ConfirmDelete)
	router.POST("/jobs/:id/delete", h.DeleteJob)
	router.GET("/tracker", h.TrackerPage)

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/dashboard", h.DashboardJSON)
		api.GET("/tracker", h.TrackerJSON)
	}

	return router
}

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
