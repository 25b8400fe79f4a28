package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/maxaizer/cv-matcher/internal/api"
	"github.com/maxaizer/cv-matcher/internal/clients/brightdata"
	"github.com/maxaizer/cv-matcher/internal/clients/gemini"
	"github.com/maxaizer/cv-matcher/internal/config"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	"github.com/maxaizer/cv-matcher/internal/repositories"
	"github.com/maxaizer/cv-matcher/internal/services"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
	"time"
)

func newJobDataService(cfg *config.Config, bus EventBus.Bus, jobs *repositories.Jobs) *services.JobDataService {
	client, err := brightdata.NewClient(brightdata.Config{
		APIToken:        cfg.BrightData.APIToken,
		DatasetID:       cfg.BrightData.DatasetID,
		TriggerURL:      cfg.BrightData.TriggerURL,
		SnapshotURL:     cfg.BrightData.SnapshotURL,
		PollInterval:    cfg.BrightData.PollInterval,
		MaxPollAttempts: cfg.BrightData.MaxPollAttempts,
	})
	if err != nil {
		log.Fatalf("can't create brightdata client: %v", err)
	}
	if cfg.BrightData.MaxRequestsPerSecond > 0 {
		client.SetRateLimit(cfg.BrightData.MaxRequestsPerSecond)
	}

	return services.NewJobDataService(bus, client, jobs)
}

func newAnalysisService(ctx context.Context, cfg *config.Config, bus EventBus.Bus,
	jobs *repositories.Jobs, analyses *repositories.Analyses) (*services.AnalysisService, *gemini.Client) {

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, gemini.Model(cfg.AI.Model))
	if err != nil {
		log.Fatalf("can't create AI client: %v", err)
	}
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)

	cachedJobs, err := services.NewCachedJobs(bus, jobs)
	if err != nil {
		log.Fatalf("can't create jobs cache: %v", err)
	}

	return services.NewAnalysisService(aiClient, cachedJobs, analyses), aiClient
}

func createToken(ctx context.Context, tokens *repositories.Tokens, userID string, validDays int) {
	var expiresAt *time.Time
	if validDays > 0 {
		expiration := time.Now().AddDate(0, 0, validDays)
		expiresAt = &expiration
	}

	token := uuid.NewString()
	if err := tokens.Add(ctx, token, userID, expiresAt); err != nil {
		log.Fatalf("can't create token: %v", err)
	}
	fmt.Println(token)
}

func main() {

	tokenFor := flag.String("create-token", "", "create an API token for the given user id and exit")
	tokenDays := flag.Int("token-days", 0, "token lifetime in days, 0 means no expiration")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	tokens := repositories.NewTokensRepository(dbContext.DB)
	if *tokenFor != "" {
		createToken(ctx, tokens, *tokenFor, *tokenDays)
		return
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	analyses := repositories.NewAnalysesRepository(dbContext.DB)
	bus := EventBus.New()

	jobDataService := newJobDataService(cfg, bus, jobs)
	analysisService, aiClient := newAnalysisService(ctx, cfg, bus, jobs, analyses)
	defer aiClient.Close()

	cleaner, err := services.NewAnalysesCleaner(analyses, cfg.AI.AnalysisRetentionDays)
	if err != nil {
		log.Fatalf("can't create analyses cleaner: %v", err)
	}
	cleaner.Start()

	handlers := api.NewHandlers(jobDataService, jobs, services.NewResumeService(), analysisService)
	router := api.NewRouter(cfg.Server, handlers, repositories.NewCachedTokens(tokens))
	server := api.NewServer(cfg.Server.Port, router)

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("http server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown failed: %v", err)
	}
	cleaner.Stop()
	log.Info("Services stopped.")
}
