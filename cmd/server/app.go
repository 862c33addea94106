package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/phrazzld/learnscripture-api/internal/platform/mailgun"
	"github.com/phrazzld/learnscripture-api/internal/platform/paypal"
	"github.com/phrazzld/learnscripture-api/internal/platform/postgres"
	"github.com/phrazzld/learnscripture-api/internal/platform/rollbar"
	"github.com/phrazzld/learnscripture-api/internal/platform/sendgrid"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"github.com/phrazzld/learnscripture-api/internal/task"
)

// services holds every application service.
type services struct {
	accounts  service.AccountService
	bible     service.BibleService
	verseSets service.VerseSetService
	learning  service.LearningService
	scores    service.ScoreService
	awards    service.AwardService
	events    service.EventService
	comments  service.CommentService
	groups    service.GroupService
	cms       service.CMSService
	donations service.DonationService
	bounces   service.BounceService
	reminders service.ReminderService
}

// externals are the third-party collaborators services depend on.
type externals struct {
	jwt       auth.JWTService
	passwords service.PasswordManager
	paypal    service.PayPalVerifier
	mailgun   service.WebhookVerifier
}

func newServices(deps service.Deps, cfg *config.Config, ext externals) services {
	scores := service.NewScoreService(deps)
	return services{
		accounts:  service.NewAccountService(deps, ext.jwt, ext.passwords, cfg.Auth),
		bible:     service.NewBibleService(deps),
		verseSets: service.NewVerseSetService(deps),
		learning:  service.NewLearningService(deps),
		scores:    scores,
		awards:    service.NewAwardService(deps),
		events:    service.NewEventService(deps),
		comments:  service.NewCommentService(deps),
		groups:    service.NewGroupService(deps, scores, cfg.Server.BaseURL),
		cms:       service.NewCMSService(deps),
		donations: service.NewDonationService(deps, ext.paypal, cfg.Payments.PayPalReceiverEmail),
		bounces:   service.NewBounceService(deps, ext.mailgun),
		reminders: service.NewReminderService(deps, cfg.Server.BaseURL),
	}
}

// newMailer picks the delivery backend named by cfg.Provider.
func newMailer(cfg config.EmailConfig, logger *slog.Logger) email.Mailer {
	if cfg.Provider == "sendgrid" {
		return sendgrid.NewMailer(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, logger)
	}
	return email.NewConsoleMailer(cfg.FromAddress, logger)
}

// newRegistry registers a factory for every task type services request.
func newRegistry(svc services, renderer task.MessageRenderer, mailer email.Mailer, logger *slog.Logger) *task.Registry {
	registry := task.NewRegistry()
	registry.Register(events.TaskSendEmail, task.NewSendEmailFactory(renderer, mailer))
	registry.Register(events.TaskRecomputeAwards, task.NewRecomputeAwardsFactory(svc.awards, logger))
	registry.Register(events.TaskSendReminders, task.NewSendRemindersFactory(svc.reminders, logger))
	return registry
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	jwtService auth.JWTService
	services   services
	reporter   rollbar.Reporter

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
	scheduler    *task.Scheduler

	shutdownTelemetry func(context.Context) error
}

// newApplication wires stores, services and background processing. The task
// runner is started; the reminder scheduler starts in Run.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		reporter: rollbar.New(cfg.ErrorTracking, version, logger),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	if cfg.Email.MailgunSigningKey == "" {
		logger.Warn("mailgun signing key not set, bounce webhooks will be rejected")
	}
	if cfg.Payments.PayPalReceiverEmail == "" {
		logger.Warn("paypal receiver email not set, donations will be rejected")
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	deps := service.Deps{
		UoW:     postgres.NewUnitOfWork(db),
		Emitter: app.eventEmitter,
		Logger:  logger,
	}
	app.services = newServices(deps, cfg, externals{
		jwt:       app.jwtService,
		passwords: auth.NewBcryptVerifier(cfg.Auth.BCryptCost),
		paypal:    paypal.NewVerifier(cfg.Payments.PayPalVerifyURL, &http.Client{Timeout: 30 * time.Second}, logger),
		mailgun:   mailgun.NewVerifier(cfg.Email.MailgunSigningKey),
	})

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	registry := newRegistry(app.services, renderer, newMailer(cfg.Email, logger), logger)

	app.taskRunner, err = setupTaskRunner(cfg.Task, postgres.NewPostgresTaskStore(db), registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		app.reporter.Report(ctx, err, map[string]any{"task_id": t.ID(), "task_type": t.Type()})
	})
	app.eventEmitter.RegisterHandler(task.NewTaskRequestHandler(registry, app.taskRunner, logger))

	if cfg.Reminders.Enabled {
		interval := time.Duration(cfg.Reminders.CheckIntervalMinutes) * time.Minute
		app.scheduler = task.NewScheduler(app.eventEmitter, interval, logger)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if app.scheduler != nil {
		app.scheduler.Start(ctx)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func setupTaskRunner(cfg config.TaskConfig, taskStore task.TaskStore, registry *task.Registry, logger *slog.Logger) (*task.TaskRunner, error) {
	runnerCfg := task.DefaultTaskRunnerConfig()
	runnerCfg.QueueSize = cfg.QueueSize
	runnerCfg.WorkerCount = cfg.WorkerCount
	runnerCfg.StuckTaskAge = time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute

	runner := task.NewTaskRunner(taskStore, registry, runnerCfg, logger)
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	return runner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.reporter != nil {
		app.reporter.Close()
	}
	if app.shutdownTelemetry != nil {
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.logger.Error("error flushing traces", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
