package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/supportkit/case-service/internal/api/http"
	"github.com/supportkit/case-service/internal/api/http/handlers"
	"github.com/supportkit/case-service/internal/config"
	"github.com/supportkit/case-service/internal/events"
	"github.com/supportkit/case-service/internal/notification"
	"github.com/supportkit/case-service/internal/observability"
	"github.com/supportkit/case-service/internal/persistence"
	"github.com/supportkit/case-service/internal/repository"
	"github.com/supportkit/case-service/internal/service"
	"github.com/supportkit/case-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var ticketRepo repository.TicketRepository
	var responseRepo repository.TicketResponseRepository
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		responseRepo = repository.NewTicketResponseRepository(pool)
	} else {
		logger.Warn("running with in-memory store; data will not survive restarts")
		store := repository.NewMemoryStore()
		ticketRepo = store
		responseRepo = store.ResponseRepo()
	}

	gateway := notification.NewSMTPGateway(cfg.Email)
	templates := notification.Templates{CompanyName: cfg.Email.CompanyName}
	dispatcher := events.NewInMemoryDispatcher()
	numbers := service.NewTicketNumberAllocator(redis.ClientHandle(), cfg.Email.TicketPrefix, logger)

	caseService := service.NewCaseService(service.CaseDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		Gateway:      gateway,
		Templates:    templates,
		Numbers:      numbers,
		Dispatcher:   dispatcher,
		Logger:       logger,
		SendTimeout:  cfg.Email.SendTimeout(),
	})
	notificationService := service.NewNotificationService(dispatcher, gateway, templates, logger)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(caseService)
	responsesHandler := handlers.NewResponsesHandler(caseService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    healthHandler,
		Tickets:   ticketsHandler,
		Responses: responsesHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
