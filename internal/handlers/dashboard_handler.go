package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
)

// Index is GET /: reload everything and draw the dashboard.
func (h *Handler) Index(c *gin.Context) {
	h.load(c)
	c.HTML(http.StatusOK, "index.html", h.page(c, "Dashboard", gin.H{
		"Snapshot":      h.Dashboard.Snapshot(),
		"RequireJobURL": h.RequireJobURL,
	}))
}

// UploadResume is POST /resumes with multipart fields name and file.
func (h *Handler) UploadResume(c *gin.Context) {
	form := &dtos.ResumeForm{Name: c.PostForm("name")}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			redirectWithAlert(c, "/", "Could not read the uploaded file: "+err.Error(), true)
			return
		}
		defer f.Close()
		form.FileName = fh.Filename
		form.File = f
	}

	if err := h.Dashboard.UploadResume(c.Request.Context(), form); err != nil {
		redirectWithAlert(c, "/", alertText(err), true)
		return
	}
	redirectWithAlert(c, "/", "Resume uploaded to the vault.", false)
}

// Resumes is GET /resumes: the vault viewer. ?id= picks the resume, default the first.
func (h *Handler) Resumes(c *gin.Context) {
	h.load(c)
	resumes := h.Dashboard.Resumes()

	data := gin.H{"Resumes": resumes, "SelectedID": 0}
	var selected *models.Resume
	if len(resumes) > 0 {
		selected = &resumes[0]
	}
	if id, err := strconv.Atoi(c.Query("id")); err == nil {
		for i := range resumes {
			if resumes[i].ID == id {
				selected = &resumes[i]
			}
		}
	}
	if selected != nil {
		data["Selected"] = selected
		data["SelectedID"] = selected.ID
		data["SelectedURL"] = h.Files.FileURL(*selected)
	}
	c.HTML(http.StatusOK, "resumes.html", h.page(c, "Resume Vault", data))
}

type trackerRow struct {
	models.TrackerEntry
	Date string
}

// TrackerPage is GET /tracker with an optional ?date=YYYY-MM-DD filter.
func (h *Handler) TrackerPage(c *gin.Context) {
	h.load(c)
	entries := h.Dashboard.Tracker()
	date := c.Query("date")

	data := h.page(c, "Tracker", gin.H{
		"Stats":       h.Tracker.Stats(entries, h.Now()),
		"Date":        date,
		"Placeholder": services.NoRecordsMessage,
	})

	filtered, err := h.Tracker.FilterByDate(entries, date)
	if err != nil {
		data["Alert"] = alertText(err)
		data["AlertError"] = true
		data["Date"] = ""
		filtered = entries
	}

	rows := make([]trackerRow, 0, len(filtered))
	for _, e := range filtered {
		rows = append(rows, trackerRow{TrackerEntry: e, Date: h.Tracker.DateOf(e)})
	}
	data["Rows"] = rows
	c.HTML(http.StatusOK, "tracker.html", data)
}

func (h *Handler) load(c *gin.Context) {
	if err := h.Dashboard.Load(c.Request.Context()); err != nil {
		log.Printf("[Web] ⚠️ %v", err)
	}
}

// page adds the shared layout fields, including any alert carried over a redirect.
func (h *Handler) page(c *gin.Context, title string, data gin.H) gin.H {
	data["Title"] = title
	data["Alert"] = c.Query("alert")
	data["AlertError"] = c.Query("kind") == "error"
	return data
}

func redirectWithAlert(c *gin.Context, path, msg string, isErr bool) {
	q := url.Values{}
	q.Set("alert", msg)
	if isErr {
		q.Set("kind", "error")
	}
	c.Redirect(http.StatusSeeOther, path+"?"+q.Encode())
}
