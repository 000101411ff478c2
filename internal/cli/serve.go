package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"dresscutur/backend/internal/config"
	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/jobs"
	"dresscutur/backend/internal/notify"
	"dresscutur/backend/internal/otelx"
	"dresscutur/backend/internal/service/auth"
	"dresscutur/backend/internal/service/booking"
	"dresscutur/backend/internal/service/catalog"
	"dresscutur/backend/internal/service/contacts"
	"dresscutur/backend/internal/store/postgres"
	grpcTransport "dresscutur/backend/internal/transport/grpc"
	"dresscutur/backend/internal/transport/httpapi"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC health endpoint and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("log_level", cfg.LogLevel),
		slog.String("version", Version),
	)

	shutdownTracing, err := otelx.Setup(ctx, otelx.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Endpoint:       cfg.OTelEndpoint,
		Insecure:       cfg.OTelInsecure,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown failed", slog.Any("err", err))
		}
	}()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	if cfg.MigrateOnStart {
		if err := postgres.MigrateUp(ctx, db, log); err != nil {
			return err
		}
	}

	eventRepo := postgres.NewEventRepo(db)
	closureRepo := postgres.NewClosureRepo(db)
	notifier := buildNotifier(cfg, log)

	bookingSvc := booking.NewService(eventRepo, closureRepo, booking.Options{
		Hours: domain.BusinessHours{
			OpenHour:      cfg.OpenHour,
			CloseHour:     cfg.CloseHour,
			SlotDuration:  cfg.SlotDuration,
			ClosedWeekday: cfg.ClosedWeekday,
		},
		Location:        cfg.Location,
		DefaultDuration: cfg.BookingDuration,
		Notifier:        notifier,
		Logger:          log,
	})
	if err := bookingSvc.Hours().Validate(); err != nil {
		return err
	}
	catalogSvc := catalog.NewService(postgres.NewServiceRepo(db), postgres.NewFabricRepo(db), postgres.NewTeamRepo(db))
	contactSvc := contacts.NewService(postgres.NewContactRepo(db), notifier, log)
	authSvc := auth.NewService(postgres.NewAdminRepo(db), cfg.BcryptCost)

	hashKey, blockKey := cfg.CookieHashKey, cfg.CookieBlockKey
	if len(hashKey) == 0 {
		log.Warn("no session keys configured; using ephemeral keys, sessions end on restart")
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
	}

	var limiter *httpapi.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		limiter = httpapi.NewRateLimiter(rdb, cfg.RateLimit, cfg.RateLimitWindow, true, log)
	} else {
		log.Info("rate limiting disabled; no redis url configured")
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewHandler(httpapi.Deps{
			Booking:        bookingSvc,
			Catalog:        catalogSvc,
			Contacts:       contactSvc,
			Auth:           authSvc,
			Sessions:       httpapi.NewSessionStore(hashKey, blockKey, cfg.SessionMaxAge, cfg.CookieSecure),
			RateLimiter:    limiter,
			Ready:          postgres.Pinger(db),
			Logger:         log,
			CORSOrigins:    cfg.CORSOrigins,
			BodyLimitBytes: cfg.BodyLimitBytes,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := grpcTransport.NewHealthChecker(postgres.Pinger(db), 10*time.Second, log)
	grpcServer := grpcTransport.NewServer(health, cfg.GRPCRequestTimeout)

	runner, err := jobs.New(eventRepo, jobs.Config{
		CompleteSpec: cfg.JobCompleteSpec,
		PurgeSpec:    cfg.JobPurgeSpec,
		PendingTTL:   cfg.PendingTTL,
		Timeout:      cfg.JobTimeout,
		Location:     cfg.Location,
	}, log)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
		return err
	}

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go health.Run(healthCtx)

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	runner.Start()

	log.Info("servers started", slog.String("http_addr", cfg.HTTPAddr), slog.String("grpc_addr", cfg.GRPCAddr))

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped with error", slog.Any("err", err))
			runErr = err
		}
	}

	stopHealth()
	health.Shutdown()
	shutdown(log, httpServer, grpcServer, runner, cfg.ShutdownTimeout)
	bookingSvc.Wait()
	contactSvc.Wait()
	return runErr
}

func buildNotifier(cfg config.Config, log *slog.Logger) notify.Notifier {
	var ns []notify.Notifier
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		ns = append(ns, notify.NewEmail(notify.EmailConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
			Inbox:     cfg.AtelierInbox,
			Location:  cfg.Location,
		}, log))
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		ns = append(ns, notify.NewSMS(notify.SMSConfig{
			AccountSID:    cfg.TwilioAccountSID,
			AuthToken:     cfg.TwilioAuthToken,
			FromNumber:    cfg.TwilioFromNumber,
			AtelierNumber: cfg.AtelierPhone,
			Location:      cfg.Location,
		}, log))
	}
	if len(ns) == 0 {
		log.Info("notifications disabled; neither sendgrid nor twilio configured")
	}
	return notify.New(ns...)
}

// shutdown drains HTTP and gRPC within timeout, forcing both closed once the
// deadline passes, then waits for running jobs.
func shutdown(log *slog.Logger, hs *http.Server, gs *grpc.Server, runner *jobs.Runner, timeout time.Duration) {
	log.Info("shutting down", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := hs.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = hs.Close()
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		gs.Stop()
	}

	if err := runner.Stop(ctx); err != nil {
		log.Warn("jobs did not finish before shutdown", slog.Any("err", err))
	}
}
