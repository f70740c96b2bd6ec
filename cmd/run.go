package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ronlotto/application"
	"ronlotto/config"
	"ronlotto/database"
	"ronlotto/domain/interfaces"
	"ronlotto/domain/services"
	"ronlotto/infrastructure"
	"ronlotto/infrastructure/chain"
	"ronlotto/infrastructure/notify"
	"ronlotto/infrastructure/observability"
	"ronlotto/repository"

	log "github.com/sirupsen/logrus"
)

// Components holds the wired services shared by the commands
type Components struct {
	DB         *database.DB
	Controller interfaces.RoundController
	Verifier   interfaces.PaymentVerifier
	Handlers   *application.Handlers

	closers []func()
}

// Close releases resources in reverse acquisition order
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// ConfigureLogging applies the configured logrus level and formatter
func ConfigureLogging(cfg *config.Config) {
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Build connects every dependency and wires the lottery services
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)
	log.Info("Database connection established successfully")

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	c.closers = append(c.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down metrics provider")
		}
	})

	// Initialize event publisher
	eventPublisher, err := connectEventPublisher(ctx, cfg, c)
	if err != nil {
		return nil, err
	}

	// Initialize Ronin client
	log.Infof("Connecting to Ronin RPC at %s...", cfg.RoninRPCURL)
	roninClient, ethClient, err := chain.DialRoninClient(ctx, cfg.RoninRPCURL, cfg.RoninChainID, cfg.RoninPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Ronin client: %w", err)
	}
	c.closers = append(c.closers, ethClient.Close)

	// Initialize winner notifier
	var notifier interfaces.WinnerNotifier
	if cfg.DiscordWebhookURL != "" {
		discordNotifier, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Discord notifier: %w", err)
		}
		notifier = discordNotifier
		log.Info("Discord winner announcements enabled")
	} else {
		log.Warn("DISCORD_WEBHOOK_URL not set, winner announcements disabled")
	}

	// Initialize repositories and services
	roundRepo := repository.NewRoundRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ticketIssuer := repository.NewTicketIssuer(db)

	disburser := services.NewPayoutDisburser(paymentRepo, roninClient, notifier, eventPublisher, metrics, services.PayoutDisburserConfig{
		Rewards:       cfg.RewardTable,
		ExplorerTxURL: cfg.ExplorerTxURL,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	c.Controller = services.NewRoundController(
		roundRepo,
		ticketRepo,
		services.NewNumberGenerator(nil),
		disburser,
		eventPublisher,
		metrics,
		services.SystemClock{},
		cfg.RoundDuration,
	)

	c.Verifier = services.NewPaymentVerifier(roninClient, ticketIssuer, eventPublisher, metrics, services.SystemClock{}, services.PaymentVerifierConfig{
		MinTicketPrice:  cfg.MinTicketPrice,
		TreasuryAddress: cfg.TreasuryAddress,
		ConfirmAttempts: cfg.ConfirmAttempts,
		ConfirmInterval: cfg.ConfirmInterval,
	})

	c.Handlers = application.NewHandlers(c.Controller, c.Verifier, roundRepo, ticketRepo, paymentRepo, db)

	log.WithFields(log.Fields{
		"prize_wallet":   roninClient.Address(),
		"round_duration": cfg.RoundDuration,
		"reward_table":   cfg.RewardTable.String(),
	}).Info("Lottery services initialized successfully")

	ok = true
	return c, nil
}

// connectEventPublisher returns a NATS publisher, or a no-op one when NATS
// is not configured
func connectEventPublisher(ctx context.Context, cfg *config.Config, c *Components) (interfaces.EventPublisher, error) {
	if cfg.NATSServers == "" {
		log.Warn("NATS_SERVERS not set, domain events will not be published")
		return infrastructure.NewNoopEventPublisher(), nil
	}

	log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	c.closers = append(c.closers, func() {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	})

	subjectMapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureLottoEventStream(natsClient, subjectMapper); err != nil {
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	return infrastructure.NewNATSEventPublisher(natsClient, subjectMapper), nil
}

// Run starts the HTTP entrypoints and, when configured, the round poller
func Run(ctx context.Context) error {
	log.Info("Starting ronlotto...")

	cfg := config.Get()
	ConfigureLogging(cfg)

	components, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	server := application.NewServer(cfg.HTTPAddr, application.NewRouter(components.Handlers))
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stopPoller := func() {}
	if cfg.PollInterval > 0 {
		stopPoller = application.NewRoundPollWorker(components.Controller, cfg.PollInterval).Start(ctx)
	} else {
		log.Info("POLL_INTERVAL not set, rounds advance only through /process-lottery-round")
	}

	log.Infof("Lottery is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stopPoller()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down ronlotto...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown timeout exceeded")
	}

	log.Info("Shutdown completed")
	return nil
}

// AdvanceOnce runs a single controller invocation, for cron-style schedulers
func AdvanceOnce(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	components, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	result, err := components.Controller.Advance(ctx)
	if err != nil {
		return fmt.Errorf("failed to advance round: %w", err)
	}

	fields := log.Fields{
		"action":   result.Action,
		"round_id": result.RoundID,
	}
	if s := result.Settlement; s != nil {
		fields["drawn_numbers"] = s.DrawnNumbers
		fields["winners"] = s.Winners
		fields["sent"] = s.Sent
		fields["failed"] = s.Failed
	}
	log.WithFields(fields).Info(result.Message)
	return nil
}
