package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/services"
)

// fakeStore is a single in-memory backing store shared by all fake
// repositories, so pipeline tests can run without a database.
type fakeStore struct {
	mu sync.Mutex

	projects    map[uuid.UUID]*models.Project
	websites    map[uuid.UUID][]string
	brands      map[uuid.UUID][]*models.Brand
	prompts     map[uuid.UUID][]*models.Prompt
	runs        map[uuid.UUID]*models.AnalysisRun
	results     []*models.PromptResult
	mentions    []*models.BrandMention
	citations   []*models.Citation
	snapshots   map[string]*models.MetricsSnapshot
	competitors []*models.DiscoveredCompetitor

	failPromptResultCreate bool
	failRunGetByID         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  make(map[uuid.UUID]*models.Project),
		websites:  make(map[uuid.UUID][]string),
		brands:    make(map[uuid.UUID][]*models.Brand),
		prompts:   make(map[uuid.UUID][]*models.Prompt),
		runs:      make(map[uuid.UUID]*models.AnalysisRun),
		snapshots: make(map[string]*models.MetricsSnapshot),
	}
}

func (s *fakeStore) repoManager() *services.RepositoryManager {
	return &services.RepositoryManager{
		ProjectRepo:              &fakeProjectRepo{s},
		BrandRepo:                &fakeBrandRepo{s},
		PromptRepo:               &fakePromptRepo{s},
		AnalysisRunRepo:          &fakeAnalysisRunRepo{s},
		PromptResultRepo:         &fakePromptResultRepo{s},
		BrandMentionRepo:         &fakeBrandMentionRepo{s},
		CitationRepo:             &fakeCitationRepo{s},
		MetricsSnapshotRepo:      &fakeMetricsSnapshotRepo{s},
		DiscoveredCompetitorRepo: &fakeDiscoveredCompetitorRepo{s},
	}
}

// seedProject registers a project with its brands and prompts and returns
// the project id.
func (s *fakeStore) seedProject(websites []string, brandNames []string, promptTexts []string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID := uuid.New()
	s.projects[projectID] = &models.Project{
		ProjectID: projectID,
		Name:      "Test Project",
		Websites:  websites,
		CreatedAt: time.Now(),
	}
	s.websites[projectID] = websites

	for i, name := range brandNames {
		s.brands[projectID] = append(s.brands[projectID], &models.Brand{
			BrandID:     uuid.New(),
			ProjectID:   projectID,
			Name:        name,
			IsUserBrand: i == 0,
		})
	}
	for _, text := range promptTexts {
		s.prompts[projectID] = append(s.prompts[projectID], &models.Prompt{
			PromptID:  uuid.New(),
			ProjectID: projectID,
			Text:      text,
			IsActive:  true,
		})
	}
	return projectID
}

func (s *fakeStore) resultIDsForRun(runID uuid.UUID) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	for _, result := range s.results {
		if result.AnalysisRunID == runID {
			ids[result.PromptResultID] = true
		}
	}
	return ids
}

type fakeProjectRepo struct{ s *fakeStore }

func (r *fakeProjectRepo) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	project, ok := r.s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s not found", projectID)
	}
	return project, nil
}

func (r *fakeProjectRepo) ListWebsites(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.websites[projectID], nil
}

func (r *fakeProjectRepo) ListScheduledForWeekday(ctx context.Context, weekday int) ([]*models.ProjectSummary, error) {
	return nil, nil
}

type fakeBrandRepo struct{ s *fakeStore }

func (r *fakeBrandRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.brands[projectID], nil
}

type fakePromptRepo struct{ s *fakeStore }

func (r *fakePromptRepo) ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Prompt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var active []*models.Prompt
	for _, prompt := range r.s.prompts[projectID] {
		if prompt.IsActive {
			active = append(active, prompt)
		}
	}
	return active, nil
}

type fakeAnalysisRunRepo struct{ s *fakeStore }

func (r *fakeAnalysisRunRepo) CreateClaim(ctx context.Context, run *models.AnalysisRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.runs {
		if existing.ProjectID == run.ProjectID &&
			(existing.Status == models.RunStatusPending || existing.Status == models.RunStatusProcessing) {
			return &repositories.RunInProgressError{RunID: existing.AnalysisRunID}
		}
	}
	stored := *run
	stored.CreatedAt = time.Now()
	r.s.runs[run.AnalysisRunID] = &stored
	return nil
}

func (r *fakeAnalysisRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failRunGetByID {
		return nil, fmt.Errorf("forced run lookup failure")
	}
	run, ok := r.s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	copied := *run
	return &copied, nil
}

func (r *fakeAnalysisRunRepo) Start(ctx context.Context, runID uuid.UUID, totalPrompts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	run, ok := r.s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	if run.Status != models.RunStatusPending {
		return fmt.Errorf("run %s is not pending", runID)
	}
	now := time.Now()
	run.Status = models.RunStatusProcessing
	run.TotalPrompts = totalPrompts
	run.StartedAt = &now
	return nil
}

func (r *fakeAnalysisRunRepo) IncrementProcessed(ctx context.Context, runID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if run, ok := r.s.runs[runID]; ok {
		run.ProcessedPrompts++
	}
	return nil
}

func (r *fakeAnalysisRunRepo) AddCost(ctx context.Context, runID uuid.UUID, cost float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if run, ok := r.s.runs[runID]; ok {
		run.TotalCost += cost
	}
	return nil
}

func (r *fakeAnalysisRunRepo) Complete(ctx context.Context, runID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if run, ok := r.s.runs[runID]; ok {
		now := time.Now()
		run.Status = models.RunStatusCompleted
		run.CompletedAt = &now
	}
	return nil
}

func (r *fakeAnalysisRunRepo) Fail(ctx context.Context, runID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if run, ok := r.s.runs[runID]; ok {
		now := time.Now()
		run.Status = models.RunStatusFailed
		run.CompletedAt = &now
	}
	return nil
}

type fakePromptResultRepo struct{ s *fakeStore }

func (r *fakePromptResultRepo) Create(ctx context.Context, result *models.PromptResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failPromptResultCreate {
		return fmt.Errorf("forced prompt result failure")
	}
	r.s.results = append(r.s.results, result)
	return nil
}

func (r *fakePromptResultRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PromptResult
	for _, result := range r.s.results {
		if result.AnalysisRunID == runID {
			out = append(out, result)
		}
	}
	return out, nil
}

type fakeBrandMentionRepo struct{ s *fakeStore }

func (r *fakeBrandMentionRepo) BulkCreate(ctx context.Context, mentions []*models.BrandMention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.mentions = append(r.s.mentions, mentions...)
	return nil
}

func (r *fakeBrandMentionRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.BrandMention, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resultIDs := r.s.resultIDsForRun(runID)
	var out []*models.BrandMention
	for _, mention := range r.s.mentions {
		if resultIDs[mention.PromptResultID] {
			out = append(out, mention)
		}
	}
	return out, nil
}

type fakeCitationRepo struct{ s *fakeStore }

func (r *fakeCitationRepo) BulkCreate(ctx context.Context, citations []*models.Citation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.citations = append(r.s.citations, citations...)
	return nil
}

func (r *fakeCitationRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.Citation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resultIDs := r.s.resultIDsForRun(runID)
	var out []*models.Citation
	for _, citation := range r.s.citations {
		if resultIDs[citation.PromptResultID] {
			out = append(out, citation)
		}
	}
	return out, nil
}

type fakeMetricsSnapshotRepo struct{ s *fakeStore }

func (r *fakeMetricsSnapshotRepo) Upsert(ctx context.Context, snapshot *models.MetricsSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := snapshot.AnalysisRunID.String() + "|" + snapshot.BrandID.String()
	if existing, ok := r.s.snapshots[key]; ok {
		// Keep the original row identity, as the database upsert would
		snapshot.MetricsSnapshotID = existing.MetricsSnapshotID
	}
	r.s.snapshots[key] = snapshot
	return nil
}

func (r *fakeMetricsSnapshotRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.MetricsSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.MetricsSnapshot
	for _, snapshot := range r.s.snapshots {
		if snapshot.AnalysisRunID == runID {
			out = append(out, snapshot)
		}
	}
	return out, nil
}

type fakeDiscoveredCompetitorRepo struct{ s *fakeStore }

func (r *fakeDiscoveredCompetitorRepo) BulkCreate(ctx context.Context, competitors []*models.DiscoveredCompetitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.competitors = append(r.s.competitors, competitors...)
	return nil
}
