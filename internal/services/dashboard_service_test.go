package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory gateway that records every call.
type fakeGateway struct {
	mu        sync.Mutex
	jobs      []models.Job
	resumes   []models.Resume
	tracker   []models.TrackerEntry
	histories map[int][]models.AnalysisResult
	failJobs  map[int]error
	listErr   error
	uploadErr error
	calls     []string
	uploads   []string

	// analyzeGate, when set, blocks Analyze for that job until closed.
	analyzeGate map[int]chan struct{}
	analyzing   chan int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		histories:   make(map[int][]models.AnalysisResult),
		failJobs:    make(map[int]error),
		analyzeGate: make(map[int]chan struct{}),
		analyzing:   make(chan int, 8),
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) ListJobs(context.Context) ([]models.Job, error) {
	f.record("ListJobs")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Job(nil), f.jobs...), nil
}

func (f *fakeGateway) ListResumes(context.Context) ([]models.Resume, error) {
	f.record("ListResumes")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Resume(nil), f.resumes...), nil
}

func (f *fakeGateway) ListTracker(context.Context) ([]models.TrackerEntry, error) {
	f.record("ListTracker")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.TrackerEntry(nil), f.tracker...), nil
}

func (f *fakeGateway) ListResults(_ context.Context, jobID int) ([]models.AnalysisResult, error) {
	f.record("ListResults")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failJobs[jobID]; err != nil {
		return nil, err
	}
	return f.histories[jobID], nil
}

func (f *fakeGateway) UploadResume(_ context.Context, name, _ string, file io.Reader) error {
	f.record("UploadResume")
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, _ := io.ReadAll(file)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name+":"+string(b))
	f.resumes = append(f.resumes, models.Resume{ID: len(f.resumes) + 1, Name: name})
	return nil
}

func (f *fakeGateway) CreateJob(_ context.Context, form *dtos.JobForm) (*models.Job, error) {
	f.record("CreateJob")
	f.mu.Lock()
	defer f.mu.Unlock()
	job := models.Job{ID: len(f.jobs) + 100, Company: form.Company, Title: form.Title, URL: form.URL}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeGateway) Analyze(ctx context.Context, jobID, resumeID int) (*models.AnalysisResult, error) {
	f.record("Analyze")
	f.mu.Lock()
	gate := f.analyzeGate[jobID]
	f.mu.Unlock()

	f.analyzing <- jobID
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resumeID < 0 {
		return nil, errors.New("ai engine exploded")
	}
	return &models.AnalysisResult{JobID: jobID, MatchScore: 90, Summary: json.RawMessage(`"great fit"`)}, nil
}

func (f *fakeGateway) DeleteJob(_ context.Context, jobID int) error {
	f.record("DeleteJob")
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.jobs[:0]
	for _, j := range f.jobs {
		if j.ID != jobID {
			kept = append(kept, j)
		}
	}
	f.jobs = kept
	return nil
}

func seededGateway() *fakeGateway {
	gw := newFakeGateway()
	gw.jobs = []models.Job{
		{ID: 1, Company: "Acme", Title: "SRE"},
		{ID: 2, Company: "Initech", Title: "Backend Engineer"},
		{ID: 3, Company: "Globex", Title: "Data Engineer"},
	}
	gw.resumes = []models.Resume{{ID: 10, Name: "Backend v1"}, {ID: 11, Name: "Infra v2"}}
	gw.histories[1] = []models.AnalysisResult{{MatchScore: 60}, {MatchScore: 85}}
	return gw
}

func TestLoad_KeepsNewestHistoryEntry(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	require.NoError(t, svc.Load(context.Background()))

	res, ok := svc.Result(1)
	require.True(t, ok)
	assert.Equal(t, models.Score(85), res.MatchScore)

	_, ok = svc.Result(2)
	assert.False(t, ok, "job without history has no result")
	assert.Len(t, svc.Jobs(), 3)
	assert.Len(t, svc.Resumes(), 2)
}

func TestLoad_HistoryFailureIsIsolated(t *testing.T) {
	gw := seededGateway()
	gw.histories[3] = []models.AnalysisResult{{MatchScore: 40}}
	gw.failJobs[2] = errors.New("boom")
	svc := NewDashboardService(gw, DashboardOptions{HistoryConcurrency: 1})

	require.NoError(t, svc.Load(context.Background()))

	_, ok := svc.Result(1)
	assert.True(t, ok)
	_, ok = svc.Result(2)
	assert.False(t, ok)
	res, ok := svc.Result(3)
	require.True(t, ok)
	assert.Equal(t, models.Score(40), res.MatchScore)
}

func TestLoad_BackendDown(t *testing.T) {
	gw := seededGateway()
	gw.listErr = errors.New("connection refused")
	svc := NewDashboardService(gw, DashboardOptions{})

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendDown)
	assert.NotEmpty(t, svc.Snapshot().LoadError)
}

func TestUploadResume_ValidationSendsNothing(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	noFile := &dtos.ResumeForm{Name: "Backend v3"}
	err := svc.UploadResume(context.Background(), noFile)
	assert.True(t, dtos.IsValidation(err))

	noLabel := &dtos.ResumeForm{FileName: "cv.pdf", File: strings.NewReader("%PDF")}
	err = svc.UploadResume(context.Background(), noLabel)
	assert.True(t, dtos.IsValidation(err))

	assert.Equal(t, 0, gw.callCount())
}

func TestUploadResume_SuccessClearsFormAndReloads(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	form := &dtos.ResumeForm{Name: "Backend v3", FileName: "cv.pdf", File: strings.NewReader("%PDF")}
	require.NoError(t, svc.UploadResume(context.Background(), form))

	assert.Equal(t, dtos.ResumeForm{}, *form)
	assert.Equal(t, []string{"Backend v3:%PDF"}, gw.uploads)
	assert.Len(t, svc.Resumes(), 3)
}

func TestUploadResume_FailureKeepsForm(t *testing.T) {
	gw := seededGateway()
	gw.uploadErr = errors.New("File is not a PDF")
	svc := NewDashboardService(gw, DashboardOptions{})

	form := &dtos.ResumeForm{Name: "Backend v3", FileName: "cv.txt", File: strings.NewReader("hi")}
	err := svc.UploadResume(context.Background(), form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File is not a PDF")
	assert.Equal(t, "Backend v3", form.Name)
	assert.NotNil(t, form.File)
}

func TestAddJob_ResetsForm(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	form := &dtos.JobForm{Company: "Hooli", Title: "Platform Engineer", URL: "https://hooli.xyz/jobs/1"}
	job, err := svc.AddJob(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "Hooli", job.Company)
	assert.Equal(t, "", form.Company)
	assert.Equal(t, "", form.Title)
	assert.Equal(t, "", form.URL)
	assert.Len(t, svc.Jobs(), 4)
}

func TestAddJob_RequireURLVariant(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{RequireJobURL: true})

	form := &dtos.JobForm{Company: "Hooli", Title: "Platform Engineer"}
	_, err := svc.AddJob(context.Background(), form)
	assert.True(t, dtos.IsValidation(err))
	assert.Equal(t, "Hooli", form.Company, "form keeps its values on validation failure")
	assert.Equal(t, 0, gw.callCount())
}

func TestAnalyze_RequiresSelection(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	_, err := svc.Analyze(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoResumeSelected)
	assert.Equal(t, 0, gw.callCount())
}

func TestAnalyze_StoresResultAndClearsBusy(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})
	require.NoError(t, svc.Load(context.Background()))

	svc.SelectResume(2, 10)
	res, err := svc.Analyze(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.Score(90), res.MatchScore)

	stored, ok := svc.Result(2)
	require.True(t, ok)
	assert.Equal(t, models.Score(90), stored.MatchScore)
	assert.False(t, svc.IsBusy(2))
}

func TestAnalyze_FailureClearsBusy(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})

	svc.SelectResume(2, -1)
	_, err := svc.Analyze(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI analysis failed")
	assert.False(t, svc.IsBusy(2))
}

func TestAnalyze_BusyIsPerJob(t *testing.T) {
	gw := seededGateway()
	gate := make(chan struct{})
	gw.analyzeGate[2] = gate
	svc := NewDashboardService(gw, DashboardOptions{})

	svc.SelectResume(1, 10)
	svc.SelectResume(2, 11)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(context.Background(), 2)
		done <- err
	}()

	select {
	case id := <-gw.analyzing:
		require.Equal(t, 2, id)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis for job 2 never started")
	}

	assert.True(t, svc.IsBusy(2))
	assert.False(t, svc.IsBusy(1), "job 1 stays interactive while job 2 is pending")

	_, err := svc.Analyze(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAnalysisPending)

	_, err = svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	<-gw.analyzing

	snap := svc.Snapshot()
	assert.Equal(t, []int{2}, snap.BusyJobIDs())

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, svc.IsBusy(2))
}

func TestDeleteJob_DeclinedLeavesListUnchanged(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})
	require.NoError(t, svc.Load(context.Background()))
	before := gw.callCount()

	deleted, err := svc.DeleteJob(context.Background(), 1, ConfirmFunc(func(string) bool { return false }))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, svc.Jobs(), 3)
	assert.Equal(t, before, gw.callCount())

	deleted, err = svc.DeleteJob(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, before, gw.callCount())
}

func TestDeleteJob_ConfirmedReloads(t *testing.T) {
	gw := seededGateway()
	svc := NewDashboardService(gw, DashboardOptions{})
	require.NoError(t, svc.Load(context.Background()))
	svc.SelectResume(1, 10)

	var prompt string
	deleted, err := svc.DeleteJob(context.Background(), 1, ConfirmFunc(func(p string) bool {
		prompt = p
		return true
	}))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Contains(t, prompt, "Delete job 1")

	assert.Len(t, svc.Jobs(), 2)
	_, ok := svc.Result(1)
	assert.False(t, ok, "state for a deleted job is dropped")
	_, ok = svc.SelectedResume(1)
	assert.False(t, ok)
}

func TestSnapshot_NormalizesFeedback(t *testing.T) {
	gw := seededGateway()
	gw.histories[2] = []models.AnalysisResult{{
		MatchScore: 70,
		Summary:    json.RawMessage(`{"top_3_missing_keywords/skills":"Python"}`),
	}}
	svc := NewDashboardService(gw, DashboardOptions{})
	require.NoError(t, svc.Load(context.Background()))

	snap := svc.Snapshot()
	require.Len(t, snap.Jobs, 3)
	card := snap.Jobs[1]
	require.NotNil(t, card.Feedback)
	assert.Equal(t, []string{"Python"}, card.Feedback.MissingSkills)
	assert.Nil(t, snap.Jobs[2].Feedback)
	assert.Empty(t, snap.BusyJobIDs())
}
