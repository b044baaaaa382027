// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
)

type ScheduledProcessor struct {
	projectRepo repositories.ProjectRepository
	client      inngestgo.Client
}

func NewScheduledProcessor(projectRepo repositories.ProjectRepository) *ScheduledProcessor {
	return &ScheduledProcessor{
		projectRepo: projectRepo,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

func (p *ScheduledProcessor) DailyRunProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-run-processor",
			Name: "Daily Analysis Run Processor - Weekly Cycle",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			// Schedules store Monday as zero; Go's Weekday has Sunday=0
			now := time.Now()
			dayOfWeek := (now.Weekday() + 6) % 7

			projects, err := step.Run(ctx, "get-scheduled-projects", func(ctx context.Context) ([]*models.ProjectSummary, error) {
				return p.projectRepo.ListScheduledForWeekday(ctx, int(dayOfWeek))
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get scheduled projects for DOW %d: %w", dayOfWeek, err)
			}

			if len(projects) == 0 {
				return map[string]interface{}{
					"execution_date":       now.Format("2006-01-02"),
					"weekday":              now.Weekday().String(),
					"total_projects_found": 0,
				}, nil
			}

			// One idempotent step per project, so a workflow retry only
			// resends the events that never went out.
			triggered := 0
			for _, project := range projects {
				stepName := fmt.Sprintf("trigger-run-%s", project.ID.String())
				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "analysis/run.requested",
						Data: map[string]interface{}{
							"project_id":   project.ID.String(),
							"triggered_by": "automatic_scheduler",
						},
					}
					return p.client.Send(ctx, evt)
				})
				if err != nil {
					// Keep going; the other projects still deserve their run
					fmt.Printf("Warning: Failed to send run event for project %s: %v\n", project.ID, err)
					continue
				}
				triggered++
			}

			return map[string]interface{}{
				"execution_date":       now.Format("2006-01-02"),
				"weekday":              now.Weekday().String(),
				"total_projects_found": len(projects),
				"runs_triggered":       triggered,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create DailyRunProcessor function: %v", err))
	}
	return fn
}
