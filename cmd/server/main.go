package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finkiranked/internal/api"
	"finkiranked/internal/app/service"
	"finkiranked/internal/app/worker"
	"finkiranked/internal/common/render"
	"finkiranked/internal/common/security"
	"finkiranked/internal/domain/repository"
	"finkiranked/internal/platform/cache"
	"finkiranked/internal/platform/config"
	"finkiranked/internal/platform/database"
	"finkiranked/internal/platform/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration & Logging
	config.Load()
	logging.Init()
	log.Info().Msg("Configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	forumRepo := repository.NewPgForumRepository(database.DB)

	// 6. Initialize Services
	markdown := render.NewMarkdown()
	authService := service.NewAuthService(userRepo)
	challengeService := service.NewChallengeService(challengeRepo, database.DB)
	leaderboardService := service.NewLeaderboardService(userRepo, cache.RDB)
	evaluationService := service.NewEvaluationService(userRepo, challengeRepo, leaderboardService, database.DB)
	forumService := service.NewForumService(forumRepo, markdown, config.AppConfig.ForumReportThreshold, database.DB)
	userService := service.NewUserService(userRepo)

	// 7. Initialize Rollover Worker (as a goroutine)
	rolloverWorker := worker.NewRolloverWorker(worker.NewRedisRolloverState(cache.RDB), userRepo, challengeRepo, leaderboardService)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go rolloverWorker.Start(workerCtx)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, challengeService, evaluationService, forumService, leaderboardService, userService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", config.AppConfig.APIPort).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("port", config.AppConfig.APIPort).Msg("Could not listen")
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info().Msg("Shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server and worker stopped gracefully")
}
