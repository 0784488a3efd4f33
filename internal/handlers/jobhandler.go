package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
)

// CreateJob is the POST /jobs form endpoint.
func (h *Handler) CreateJob(c *gin.Context) {
	var form dtos.JobForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithAlert(c, "/", "Invalid form: "+err.Error(), true)
		return
	}

	job, err := h.Dashboard.AddJob(c.Request.Context(), &form)
	if err != nil {
		redirectWithAlert(c, "/", alertText(err), true)
		return
	}
	msg := "Job saved."
	if job != nil && job.Title != "" {
		msg = fmt.Sprintf("Saved %s at %s.", job.Title, job.Company)
	}
	redirectWithAlert(c, "/", msg, false)
}

// AnalyzeJob is POST /jobs/:id/analyze. The form carries the chosen resume_id.
func (h *Handler) AnalyzeJob(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	// A submitted blank choice clears the earlier selection.
	if raw, present := c.GetPostForm("resume_id"); present {
		resumeID := 0
		if raw != "" {
			var err error
			if resumeID, err = strconv.Atoi(raw); err != nil {
				redirectWithAlert(c, "/", "Invalid resume selection.", true)
				return
			}
		}
		h.Dashboard.SelectResume(jobID, resumeID)
	}

	res, err := h.Dashboard.Analyze(c.Request.Context(), jobID)
	if err != nil {
		redirectWithAlert(c, "/", alertText(err), true)
		return
	}
	redirectWithAlert(c, "/", fmt.Sprintf("Analysis complete: %.0f%% match.", float64(res.MatchScore)), false)
}

// ConfirmDelete is GET /jobs/:id/delete: the confirmation page.
func (h *Handler) ConfirmDelete(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	job, err := h.Dashboard.Job(jobID)
	if err != nil {
		h.load(c)
		job, err = h.Dashboard.Job(jobID)
	}
	if err != nil {
		redirectWithAlert(c, "/", alertText(err), true)
		return
	}
	c.HTML(http.StatusOK, "confirm_delete.html", h.page(c, "Delete job", gin.H{"Job": job}))
}

// DeleteJob is POST /jobs/:id/delete. Nothing is sent unless confirm=yes.
func (h *Handler) DeleteJob(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	confirmed := c.PostForm("confirm") == "yes"
	deleted, err := h.Dashboard.DeleteJob(c.Request.Context(), jobID, services.ConfirmFunc(func(string) bool {
		return confirmed
	}))
	switch {
	case err != nil:
		redirectWithAlert(c, "/", alertText(err), true)
	case !deleted:
		redirectWithAlert(c, "/", "Delete cancelled.", false)
	default:
		redirectWithAlert(c, "/", "Job deleted.", false)
	}
}

func jobIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		redirectWithAlert(c, "/", "Invalid job id.", true)
		return 0, false
	}
	return id, true
}
