package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoResumeSelected = errors.New("select a resume first")
	ErrAnalysisPending  = errors.New("analysis already running for this job")
	ErrJobNotFound      = errors.New("job not found")
	ErrBackendDown      = errors.New("connection to backend failed")
)

// Gateway is the slice of the backend client the dashboard needs.
type Gateway interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListResumes(ctx context.Context) ([]models.Resume, error)
	ListResults(ctx context.Context, jobID int) ([]models.AnalysisResult, error)
	ListTracker(ctx context.Context) ([]models.TrackerEntry, error)
	UploadResume(ctx context.Context, name, fileName string, file io.Reader) error
	CreateJob(ctx context.Context, form *dtos.JobForm) (*models.Job, error)
	Analyze(ctx context.Context, jobID, resumeID int) (*models.AnalysisResult, error)
	DeleteJob(ctx context.Context, jobID int) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// DashboardOptions tunes the dashboard.
type DashboardOptions struct {
	RequireJobURL      bool
	HistoryConcurrency int
}

// DashboardService holds the volatile dashboard state: the three lists, the newest
// analysis per job, the resume chosen per job, and the jobs with an analysis in flight.
// One mutex guards all of it; history fetches write into results as they finish, so
// readers can see a partially filled map at any time.
type DashboardService struct {
	gateway Gateway
	opts    DashboardOptions

	mu        sync.RWMutex
	jobs      []models.Job
	resumes   []models.Resume
	tracker   []models.TrackerEntry
	results   map[int]models.AnalysisResult
	selected  map[int]int
	busy      map[int]bool
	loadedAt  time.Time
	loadError error
}

func NewDashboardService(gw Gateway, opts DashboardOptions) *DashboardService {
	if opts.HistoryConcurrency < 1 {
		opts.HistoryConcurrency = 8
	}
	return &DashboardService{
		gateway:  gw,
		opts:     opts,
		results:  make(map[int]models.AnalysisResult),
		selected: make(map[int]int),
		busy:     make(map[int]bool),
	}
}

// Load refreshes jobs, resumes and tracker entries concurrently, then fans out one
// history fetch per job. A failed list leaves that list empty; a failed history is
// logged and skipped. Load only fails when no list could be fetched.
func (s *DashboardService) Load(ctx context.Context) error {
	var (
		jobs                          []models.Job
		resumes                       []models.Resume
		tracker                       []models.TrackerEntry
		jobsErr, resumesErr, trackErr error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobs, jobsErr = s.gateway.ListJobs(gCtx)
		return nil
	})
	g.Go(func() error {
		resumes, resumesErr = s.gateway.ListResumes(gCtx)
		return nil
	})
	g.Go(func() error {
		tracker, trackErr = s.gateway.ListTracker(gCtx)
		return nil
	})
	_ = g.Wait()

	for name, err := range map[string]error{"jobs": jobsErr, "resumes": resumesErr, "tracker": trackErr} {
		if err != nil {
			log.Printf("[Dashboard] ⚠️ Failed to load %s: %v", name, err)
		}
	}

	if jobsErr != nil && resumesErr != nil && trackErr != nil {
		err := fmt.Errorf("%w: %v", ErrBackendDown, jobsErr)
		s.mu.Lock()
		s.loadError = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.jobs = nonNil(jobs)
	s.resumes = nonNil(resumes)
	s.tracker = nonNil(tracker)
	s.loadedAt = time.Now()
	s.loadError = nil
	s.pruneLocked()
	s.mu.Unlock()

	s.loadHistories(ctx, jobs)
	return nil
}

// loadHistories fetches each job's history independently and stores the newest entry.
func (s *DashboardService) loadHistories(ctx context.Context, jobs []models.Job) {
	var g errgroup.Group
	g.SetLimit(s.opts.HistoryConcurrency)
	for _, job := range jobs {
		jobID := job.ID
		g.Go(func() error {
			history, err := s.gateway.ListResults(ctx, jobID)
			if err != nil {
				log.Printf("[Dashboard] No history for job %d: %v", jobID, err)
				return nil
			}
			if len(history) == 0 {
				return nil
			}
			s.mu.Lock()
			// Can replace a result from an Analyze that finished mid-load; the next Load corrects it.
			s.results[jobID] = history[len(history)-1]
			s.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// pruneLocked drops per-job state for jobs that no longer exist.
func (s *DashboardService) pruneLocked() {
	live := make(map[int]bool, len(s.jobs))
	for _, j := range s.jobs {
		live[j.ID] = true
	}
	for id := range s.results {
		if !live[id] {
			delete(s.results, id)
		}
	}
	for id := range s.selected {
		if !live[id] {
			delete(s.selected, id)
		}
	}
}

// UploadResume validates the form, uploads the file and reloads. The form is cleared
// only on success so a failed upload can be retried as is.
func (s *DashboardService) UploadResume(ctx context.Context, form *dtos.ResumeForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := s.gateway.UploadResume(ctx, form.Name, form.FileName, form.File); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	form.Reset()
	s.reload(ctx)
	return nil
}

// AddJob validates and submits the job form, resetting it on success.
func (s *DashboardService) AddJob(ctx context.Context, form *dtos.JobForm) (*models.Job, error) {
	if err := form.Validate(s.opts.RequireJobURL); err != nil {
		return nil, err
	}
	job, err := s.gateway.CreateJob(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("job save failed: %w", err)
	}
	form.Reset()
	s.reload(ctx)
	return job, nil
}

// SelectResume records which resume to analyze the job against. Zero clears it.
func (s *DashboardService) SelectResume(jobID, resumeID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resumeID == 0 {
		delete(s.selected, jobID)
		return
	}
	s.selected[jobID] = resumeID
}

func (s *DashboardService) SelectedResume(jobID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.selected[jobID]
	return id, ok
}

// Analyze runs the AI match for a job against its selected resume. Only this job is
// marked busy; the marker is cleared whatever the outcome.
func (s *DashboardService) Analyze(ctx context.Context, jobID int) (*models.AnalysisResult, error) {
	s.mu.Lock()
	resumeID, ok := s.selected[jobID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoResumeSelected
	}
	if s.busy[jobID] {
		s.mu.Unlock()
		return nil, ErrAnalysisPending
	}
	s.busy[jobID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.busy, jobID)
		s.mu.Unlock()
	}()

	res, err := s.gateway.Analyze(ctx, jobID, resumeID)
	if err != nil {
		return nil, fmt.Errorf("AI analysis failed: %w", err)
	}

	s.mu.Lock()
	s.results[jobID] = *res
	s.mu.Unlock()
	return res, nil
}

// IsBusy reports whether an analysis is in flight for the job.
func (s *DashboardService) IsBusy(jobID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy[jobID]
}

// DeleteJob removes a job after confirmation. It returns false, and sends nothing,
// when the user declines.
func (s *DashboardService) DeleteJob(ctx context.Context, jobID int, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(fmt.Sprintf("Delete job %d and its analysis history?", jobID)) {
		return false, nil
	}
	if err := s.gateway.DeleteJob(ctx, jobID); err != nil {
		return false, fmt.Errorf("delete failed: %w", err)
	}
	s.reload(ctx)
	return true, nil
}

func (s *DashboardService) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		log.Printf("[Dashboard] ⚠️ Reload after mutation failed: %v", err)
	}
}

func (s *DashboardService) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Job(nil), s.jobs...)
}

func (s *DashboardService) Job(jobID int) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.ID == jobID {
			return j, nil
		}
	}
	return models.Job{}, ErrJobNotFound
}

func (s *DashboardService) Resumes() []models.Resume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Resume(nil), s.resumes...)
}

func (s *DashboardService) Tracker() []models.TrackerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TrackerEntry(nil), s.tracker...)
}

// Result returns the newest known analysis for a job.
func (s *DashboardService) Result(jobID int) (models.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[jobID]
	return res, ok
}

// JobCard is everything a front end needs to draw one job.
type JobCard struct {
	Job              models.Job `json:"job"`
	SelectedResumeID int        `json:"selected_resume_id,omitempty"`
	Busy             bool       `json:"busy"`
	Feedback         *Feedback  `json:"feedback,omitempty"`
}

// Snapshot is a consistent copy of the dashboard state.
type Snapshot struct {
	Jobs      []JobCard       `json:"jobs"`
	Resumes   []models.Resume `json:"resumes"`
	LoadedAt  time.Time       `json:"loaded_at"`
	LoadError string          `json:"load_error,omitempty"`
}

// BusyJobIDs returns the jobs with an analysis in flight, sorted.
func (s *Snapshot) BusyJobIDs() []int {
	ids := []int{}
	for _, c := range s.Jobs {
		if c.Busy {
			ids = append(ids, c.Job.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *DashboardService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Jobs:     make([]JobCard, 0, len(s.jobs)),
		Resumes:  append([]models.Resume{}, s.resumes...),
		LoadedAt: s.loadedAt,
	}
	if s.loadError != nil {
		snap.LoadError = s.loadError.Error()
	}
	for _, j := range s.jobs {
		card := JobCard{Job: j, SelectedResumeID: s.selected[j.ID], Busy: s.busy[j.ID]}
		if res, ok := s.results[j.ID]; ok {
			fb := NormalizeFeedback(&res)
			card.Feedback = &fb
		}
		snap.Jobs = append(snap.Jobs, card)
	}
	return snap
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
