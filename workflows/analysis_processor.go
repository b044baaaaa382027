// workflows/analysis_processor.go
package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/services"
)

type AnalysisProcessor struct {
	runService services.AnalysisRunService
	client     inngestgo.Client
}

func NewAnalysisProcessor(runService services.AnalysisRunService) *AnalysisProcessor {
	return &AnalysisProcessor{
		runService: runService,
	}
}

func (p *AnalysisProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// AnalysisRunEvent triggers run execution. RunID is set when the trigger
// endpoint already claimed the run; the scheduler sends only ProjectID and
// the claim happens here.
type AnalysisRunEvent struct {
	ProjectID   string `json:"project_id"`
	RunID       string `json:"run_id,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *AnalysisProcessor) ProcessAnalysisRun() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "process-analysis-run",
			Name: "Process Analysis Run - Brand Visibility Pipeline",
			// A run is claimed exactly once; retrying a half-executed run
			// would trip the pending-status guard, so leave retries off.
			Retries: inngestgo.IntPtr(0),
		},
		inngestgo.EventTrigger("analysis/run.requested", nil),
		func(ctx context.Context, input inngestgo.Input[AnalysisRunEvent]) (any, error) {
			fmt.Printf("[ProcessAnalysisRun] Starting pipeline for project: %s\n", input.Event.Data.ProjectID)

			runIDStr, err := step.Run(ctx, "claim-run", func(ctx context.Context) (string, error) {
				if input.Event.Data.RunID != "" {
					// Already claimed by the trigger endpoint
					return input.Event.Data.RunID, nil
				}

				projectID, err := uuid.Parse(input.Event.Data.ProjectID)
				if err != nil {
					return "", fmt.Errorf("invalid project ID: %w", err)
				}

				ack, err := p.runService.StartRun(ctx, projectID)
				if err != nil {
					var inProgress *repositories.RunInProgressError
					if errors.As(err, &inProgress) {
						// Another run holds the slot; skip instead of failing
						fmt.Printf("[ProcessAnalysisRun] ⏭️ Skipping project %s: %v\n", input.Event.Data.ProjectID, err)
						return "", nil
					}
					return "", err
				}
				return ack.RunID.String(), nil
			})
			if err != nil {
				return nil, fmt.Errorf("claim step failed: %w", err)
			}
			if runIDStr == "" {
				return map[string]interface{}{
					"project_id": input.Event.Data.ProjectID,
					"skipped":    true,
				}, nil
			}

			_, err = step.Run(ctx, "execute-run", func(ctx context.Context) (interface{}, error) {
				runID, err := uuid.Parse(runIDStr)
				if err != nil {
					return nil, fmt.Errorf("invalid run ID: %w", err)
				}
				if err := p.runService.ExecuteRun(ctx, runID); err != nil {
					return nil, fmt.Errorf("failed to execute run: %w", err)
				}
				return map[string]interface{}{"run_id": runIDStr}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("execute step failed: %w", err)
			}

			fmt.Printf("[ProcessAnalysisRun] ✅ Run %s finished\n", runIDStr)
			return map[string]interface{}{
				"project_id": input.Event.Data.ProjectID,
				"run_id":     runIDStr,
				"status":     "completed",
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create analysis run function: %v", err))
	}
	return fn
}
