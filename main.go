// main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/services"
	"github.com/brandlens/brandlens-workflows/workflows"
)

// createDatabaseClient connects the shared sqlx pool using our config structure
func createDatabaseClient(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)
	log.Printf("Query model: %s", cfg.QueryModel)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	}

	ctx := context.Background()
	db, err := createDatabaseClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("Successfully connected to database")

	repoManager := services.NewRepositoryManager(db)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Wire the analysis pipeline
	costService := services.NewCostService()
	provider, err := providers.NewProvider(cfg.QueryModel, cfg, costService)
	if err != nil {
		log.Fatalf("Failed to create AI provider: %v", err)
	}

	mentionService := services.NewMentionService()
	citationService := services.NewCitationService()
	analysisService := services.NewPromptAnalysisService(provider, mentionService, citationService)
	metricsService := services.NewMetricsService(repoManager)

	var discoveryService services.CompetitorDiscoveryService
	if cfg.OpenAIAPIKey != "" {
		discoveryService = services.NewCompetitorDiscoveryService(cfg, costService)
	} else {
		log.Printf("Competitor discovery disabled: no OpenAI API key")
	}

	progressHub := services.NewProgressHub()
	runService := services.NewAnalysisRunService(cfg, repoManager, analysisService, citationService, metricsService, discoveryService, progressHub)
	log.Printf("Analysis services initialized")

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "brandlens-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	log.Printf("Initializing AnalysisProcessor workflow...")
	analysisProcessor := workflows.NewAnalysisProcessor(runService)
	analysisProcessor.SetClient(client)
	analysisProcessor.ProcessAnalysisRun()

	log.Printf("Initializing ScheduledProcessor workflow...")
	scheduledProcessor := workflows.NewScheduledProcessor(repoManager.ProjectRepo)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyRunProcessor()

	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"brandlens-workflows","status":"running"}`))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Trigger an analysis run. Claims the run synchronously so the caller
	// gets a run id back, then hands execution to the workflow.
	mux.HandleFunc("/api/runs/trigger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid JSON body"}`))
			return
		}
		projectID, err := uuid.Parse(body.ProjectID)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid project_id"}`))
			return
		}

		ack, err := runService.StartRun(r.Context(), projectID)
		if err != nil {
			var inProgress *repositories.RunInProgressError
			if errors.As(err, &inProgress) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(fmt.Sprintf(`{"error":"run already in progress","run_id":"%s"}`, inProgress.RunID)))
				return
			}
			log.Printf("Failed to start run for project %s: %v", projectID, err)
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(fmt.Sprintf(`{"error":%q}`, err.Error())))
			return
		}

		evt := inngestgo.Event{
			Name: "analysis/run.requested",
			Data: map[string]interface{}{
				"project_id":   projectID.String(),
				"run_id":       ack.RunID.String(),
				"triggered_by": "api",
			},
		}
		if _, err := client.Send(r.Context(), evt); err != nil {
			log.Printf("Failed to send run event: %v", err)
			// Release the claim so the project is not stuck behind a run
			// nobody will execute
			if failErr := repoManager.AnalysisRunRepo.Fail(r.Context(), ack.RunID); failErr != nil {
				log.Printf("Failed to release unqueued run %s: %v", ack.RunID, failErr)
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"failed to queue run"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(ack)
	})

	// Live run progress over server-sent events. Ends after the terminal
	// event, or immediately when the run already finished.
	mux.HandleFunc("/api/runs/progress", progressHandler(repoManager.AnalysisRunRepo, progressHub))

	port := cfg.Port
	log.Printf("Starting BrandLens Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

// progressHandler streams run progress as server-sent events. The stream
// always ends with a terminal event, even when the run finished before or
// while the client attached.
func progressHandler(runRepo repositories.AnalysisRunRepository, hub *services.ProgressHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(r.URL.Query().Get("run_id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid run_id"}`))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		run, err := runRepo.GetByID(r.Context(), runID)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"run not found"}`))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		writeEvent := func(event services.ProgressEvent) {
			payload, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}

		if run.Status == models.RunStatusCompleted || run.Status == models.RunStatusFailed {
			writeEvent(services.ProgressEvent{
				Type:   "complete",
				RunID:  runID.String(),
				Status: run.Status,
			})
			return
		}

		events, cancel := hub.Subscribe(runID)
		defer cancel()

		// The run can finish between the status check and the subscribe,
		// closing its hub entry before we attached. Re-check once so the
		// stream still ends with a terminal event instead of hanging on a
		// channel nobody publishes to.
		if run, err := runRepo.GetByID(r.Context(), runID); err == nil &&
			(run.Status == models.RunStatusCompleted || run.Status == models.RunStatusFailed) {
			writeEvent(services.ProgressEvent{
				Type:   "complete",
				RunID:  runID.String(),
				Status: run.Status,
			})
			return
		}

		for {
			select {
			case event, open := <-events:
				if !open {
					return
				}
				writeEvent(event)
				if event.Type == "complete" {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}
