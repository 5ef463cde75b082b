package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// ProjectStore is the persistence surface the generation runner needs.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateProgress(ctx context.Context, id string, progress int, message string) error
	MarkCompleted(ctx context.Context, id string, documentation, metadata string) error
	MarkError(ctx context.Context, id string, message string) error
}

// GenerationRecorder receives measurements about finished runs.
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, method string, duration time.Duration, tokens, sections int)
	RecordFailure(ctx context.Context, reason string)
}

// Service drives one documentation generation run end to end: progress
// checkpoints, orchestration, and terminal status transitions.
type Service struct {
	store        ProjectStore
	orchestrator *Orchestrator
	metrics      GenerationRecorder
}

// NewService wires the generation runner. metrics may be nil.
func NewService(store ProjectStore, orchestrator *Orchestrator, metrics GenerationRecorder) *Service {
	return &Service{store: store, orchestrator: orchestrator, metrics: metrics}
}

// Progress checkpoints reported while a run is processing.
var progressCheckpoints = []struct {
	Progress int
	Message  string
}{
	{10, "Analyzing project files..."},
	{25, "Deploying specialist documentation agents..."},
	{50, "Agents analyzing project in parallel..."},
	{75, "Assembling documentation sections..."},
	{90, "Finalizing documentation..."},
}

// Generate runs the pipeline for a stored project and records the outcome.
// It is designed to run in a background goroutine: every failure path marks
// the project errored rather than returning silently.
func (s *Service) Generate(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "service.generate")
	defer span.End()

	start := time.Now()
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project %s: %w", projectID, err)
	}

	s.checkpoint(ctx, projectID, 0)
	s.checkpoint(ctx, projectID, 1)
	snapshot := project.Snapshot()

	s.checkpoint(ctx, projectID, 2)
	result, err := s.orchestrator.Generate(ctx, snapshot)
	if err != nil {
		s.fail(ctx, projectID, err)
		return fmt.Errorf("generate documentation for %s: %w", projectID, err)
	}

	s.checkpoint(ctx, projectID, 3)
	meta, err := json.Marshal(models.GenerationMetadata{
		Model:             result.Model,
		Method:            result.Method,
		TokensUsed:        result.TokensUsed,
		ProcessingTimeMS:  result.ProcessingTimeMS,
		GeneratedAt:       result.GeneratedAt,
		AgentsDeployed:    result.AgentsDeployed,
		SectionsGenerated: result.SectionsGenerated,
		Tabs:              result.Tabs,
	})
	if err != nil {
		s.fail(ctx, projectID, err)
		return fmt.Errorf("marshal generation metadata for %s: %w", projectID, err)
	}

	s.checkpoint(ctx, projectID, 4)
	if err := s.store.MarkCompleted(ctx, projectID, result.Content, string(meta)); err != nil {
		s.fail(ctx, projectID, err)
		return fmt.Errorf("complete project %s: %w", projectID, err)
	}

	if s.metrics != nil {
		s.metrics.RecordGeneration(ctx, result.Method, time.Since(start), result.TokensUsed, result.SectionsGenerated)
	}
	log.Printf(`{"level":"info","component":"orchestration","event":"project_completed","project_id":%q,"sections":%d,"method":%q}`,
		projectID, result.SectionsGenerated, result.Method)
	return nil
}

func (s *Service) checkpoint(ctx context.Context, projectID string, idx int) {
	cp := progressCheckpoints[idx]
	if err := s.store.UpdateProgress(ctx, projectID, cp.Progress, cp.Message); err != nil {
		log.Printf(`{"level":"warn","component":"orchestration","event":"progress_update_failed","project_id":%q,"progress":%d,"error":%q}`,
			projectID, cp.Progress, err.Error())
	}
}

func (s *Service) fail(ctx context.Context, projectID string, cause error) {
	if s.metrics != nil {
		s.metrics.RecordFailure(ctx, "generation")
	}
	if err := s.store.MarkError(ctx, projectID, cause.Error()); err != nil {
		log.Printf(`{"level":"error","component":"orchestration","event":"mark_error_failed","project_id":%q,"error":%q}`,
			projectID, err.Error())
	}
}
