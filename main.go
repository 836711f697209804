package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alerthttp "aura-panel/internal/alerting/interfaces/http"
	analyticsapp "aura-panel/internal/analytics/application"
	analyticshttp "aura-panel/internal/analytics/interfaces/http"
	"aura-panel/internal/auth"
	"aura-panel/internal/config"
	"aura-panel/internal/hazard/application"
	hazardhttp "aura-panel/internal/hazard/interfaces/http"
	"aura-panel/internal/hazard/notify"
	logbook "aura-panel/internal/logbook/domain"
	logbookmemory "aura-panel/internal/logbook/infrastructure/memory"
	logbookpostgres "aura-panel/internal/logbook/infrastructure/postgres"
	logbookhttp "aura-panel/internal/logbook/interfaces/http"
	"aura-panel/internal/observability/metrics"
	"aura-panel/internal/telemetry/infrastructure/rover"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	var logs logbook.Repository
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		repo := logbookpostgres.NewRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("db schema error: %v", err)
		}
		logs = repo
	} else {
		logger.Printf("no DATABASE_URL configured, using in-memory log store")
		logs = logbookmemory.NewRepository()
	}

	metrics.Init(db, logger)

	source, err := rover.NewClient(cfg.RoverBaseURL)
	if err != nil {
		logger.Fatalf("rover client error: %v", err)
	}

	template, err := notify.NewTemplate(cfg.NotifyTemplate)
	if err != nil {
		logger.Fatalf("notify template error: %v", err)
	}
	var channel notify.Channel
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegram, err := notify.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Fatalf("telegram channel error: %v", err)
		}
		channel = telegram
	} else {
		logger.Printf("telegram credentials not configured, message forwarding disabled")
	}

	siren := notify.NewSiren(notify.WithPattern(notify.Pattern{On: cfg.SirenPulseOn, Off: cfg.SirenPulseOff}))
	desktop := notify.NewPlatformNotifier(cfg.DesktopNotifications, logger)

	dispatcher := notify.NewDispatcher(
		logger,
		notify.SirenAction(siren),
		notify.DesktopAction(desktop),
		notify.LogbookAction(logs),
		notify.MessageAction(channel, template),
	)

	broker := hazardhttp.NewSSEBroker()
	watchdog, err := application.NewWatchdog(
		source,
		dispatcher,
		siren,
		cfg.GasThreshold,
		application.WithLogbook(logs),
		application.WithEventSink(broker),
		application.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("watchdog error: %v", err)
	}
	if err := watchdog.Start(context.Background(), cfg.PollInterval); err != nil {
		logger.Fatalf("watchdog start error: %v", err)
	}

	watchdogHandler, err := hazardhttp.NewHandler(watchdog)
	if err != nil {
		logger.Fatalf("watchdog handler error: %v", err)
	}
	logsHandler, err := logbookhttp.NewHandler(logs)
	if err != nil {
		logger.Fatalf("logs handler error: %v", err)
	}
	alertHandler, err := alerthttp.NewHandler(channel, template, logs, logger)
	if err != nil {
		logger.Fatalf("alert handler error: %v", err)
	}
	analyticsService, err := analyticsapp.NewService(logs)
	if err != nil {
		logger.Fatalf("analytics service error: %v", err)
	}
	analyticsHandler, err := analyticshttp.NewHandler(analyticsService)
	if err != nil {
		logger.Fatalf("analytics handler error: %v", err)
	}

	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), auth.NewDefaultPolicy())

	mux := http.NewServeMux()
	mux.Handle("/api/v1/watchdog/state", watchdogHandler)
	mux.Handle("/api/v1/watchdog/ack", watchdogHandler)
	mux.Handle("/api/v1/watchdog/stream", hazardhttp.NewStreamHandler(broker))
	mux.Handle("/logs", logsHandler)
	mux.Handle("/logs/export", logsHandler)
	mux.Handle("/alert/", alertHandler)
	mux.Handle("/analytics/summary", analyticsHandler)
	mux.Handle("/analytics/report.pdf", analyticsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Printf("shutting down")
		watchdog.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal(err)
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working behind the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
