// Package backend is the HTTP client for the CareerFlow gateway. The gateway owns all
// storage, scraping and AI scoring; this package only moves JSON back and forth.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
)

// DefaultTimeout bounds a single gateway call.
const DefaultTimeout = 30 * time.Second

// Client talks to the gateway REST surface.
type Client struct {
	baseURL    string
	jobsPath   string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	JobsPath   string // "/jobs" or the older "/api/dashboard/jobs"
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	jobsPath := opts.JobsPath
	if jobsPath == "" {
		jobsPath = "/jobs"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		jobsPath:   jobsPath,
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.getList(ctx, c.jobsPath, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) ListResumes(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := c.getList(ctx, "/resumes", &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

// ListResults returns the analysis history for a job, oldest first.
func (c *Client) ListResults(ctx context.Context, jobID int) ([]models.AnalysisResult, error) {
	var history []models.AnalysisResult
	if err := c.getList(ctx, "/results/"+strconv.Itoa(jobID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// LatestResult returns the newest history entry, or nil when the job has none.
func (c *Client) LatestResult(ctx context.Context, jobID int) (*models.AnalysisResult, error) {
	history, err := c.ListResults(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[len(history)-1]
	return &latest, nil
}

func (c *Client) ListTracker(ctx context.Context) ([]models.TrackerEntry, error) {
	var entries []models.TrackerEntry
	if err := c.getList(ctx, "/tracker/all", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) CreateTrackerEntry(ctx context.Context, req *dtos.TrackerEntryRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/tracker", req, nil)
}

// UploadResume posts the file as multipart form data under the given label.
func (c *Client) UploadResume(ctx context.Context, name, fileName string, file io.Reader) error {
	if fileName == "" {
		fileName = "resume.pdf"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	path := "/resumes/upload?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, "/resumes/upload", nil)
}

func (c *Client) CreateJob(ctx context.Context, form *dtos.JobForm) (*models.Job, error) {
	var job models.Job
	if err := c.sendJSON(ctx, http.MethodPost, "/jobs", form, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Analyze asks the gateway to score a resume against a job.
func (c *Client) Analyze(ctx context.Context, jobID, resumeID int) (*models.AnalysisResult, error) {
	path := fmt.Sprintf("/jobs/%d/analyze/%d", jobID, resumeID)
	var resp models.AnalyzeResponse
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.AIResponse == nil {
		return nil, &APIError{Method: http.MethodPost, Path: path, StatusCode: http.StatusOK, Detail: "response has no ai_response"}
	}
	return resp.AIResponse, nil
}

func (c *Client) DeleteJob(ctx context.Context, jobID int) error {
	return c.sendJSON(ctx, http.MethodDelete, "/jobs/"+strconv.Itoa(jobID), nil, nil)
}

// FileURL is where the gateway serves an uploaded resume.
func (c *Client) FileURL(r models.Resume) string {
	if r.FileURL == "" {
		return ""
	}
	if strings.HasPrefix(r.FileURL, "http://") || strings.HasPrefix(r.FileURL, "https://") {
		return r.FileURL
	}
	return c.baseURL + "/" + strings.TrimLeft(r.FileURL, "/")
}

// Ping checks the gateway answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/resumes", nil)
	if err != nil {
		return err
	}
	return c.do(req, "/resumes", nil)
}

// getList decodes a JSON array into out. Anything that is not an array decodes as empty.
func (c *Client) getList(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	var raw json.RawMessage
	if err := c.do(req, path, &raw); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Method: req.Method, Path: path, Detail: "gateway unreachable", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Detail: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Detail: "invalid JSON response", Cause: err}
	}
	return nil
}
