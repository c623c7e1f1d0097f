package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sharehub/broker"
	"sharehub/core"
	"sharehub/handlers/api/content"
	"sharehub/handlers/api/maintenance"
	"sharehub/handlers/websocket"
	adminMiddleware "sharehub/middleware"
	"sharehub/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

type serverConfig struct {
	maxPublicHistory int
	maxFileSize      int64
	sweepInterval    time.Duration
	allowedOrigins   []string
	connectionToken  string
	adminJWTSecret   string
}

func loadConfig() serverConfig {
	cfg := serverConfig{
		maxPublicHistory: core.DefaultMaxPublicHistory,
		maxFileSize:      core.DefaultMaxFileSize,
		connectionToken:  os.Getenv("CONNECTION_TOKEN"),
		adminJWTSecret:   os.Getenv("ADMIN_JWT_SECRET"),
	}

	if v := os.Getenv("MAX_PUBLIC_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.maxPublicHistory = n
		} else {
			logrus.WithField("value", v).Warn("Ignoring invalid MAX_PUBLIC_HISTORY")
		}
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.maxFileSize = n
		} else {
			logrus.WithField("value", v).Warn("Ignoring invalid MAX_FILE_SIZE")
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.sweepInterval = d
		} else {
			logrus.WithField("value", v).Warn("Ignoring invalid SWEEP_INTERVAL")
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.allowedOrigins = append(cfg.allowedOrigins, origin)
			}
		}
	}
	return cfg
}

func setupRouter(cfg serverConfig, store core.ContentStore, registry *broker.RoomRegistry, ledger *broker.DeletionLedger, socketHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	corsOrigins := cfg.allowedOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/content", func(r chi.Router) {
		r.Get("/{id}", content.HandleGet(store))
	})

	r.Get("/api/rooms", maintenance.HandleListRooms(registry))

	r.Route("/api/maintenance", func(r chi.Router) {
		r.Use(adminMiddleware.AdminJWT(cfg.adminJWTSecret))
		r.Post("/sweep", maintenance.HandleSweep(ledger))
		r.Get("/pending", maintenance.HandlePendingDeletions(ledger))
	})

	r.Mount("/socket.io/", socketHandler)

	return r
}

func runSweeper(ctx context.Context, ledger *broker.DeletionLedger, interval time.Duration) {
	if interval <= 0 {
		logrus.Info("Periodic sweep disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ledger.Sweep(ctx)
		}
	}
}

func waitForShutdown(ioo *socketio.Server, ledger *broker.DeletionLedger, cancel context.CancelFunc) {
	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	cancel()
	ioo.Close(nil)

	// Final reconciliation pass before the process goes away; anything
	// that fails here is lost with the in-memory ledger.
	result := ledger.Sweep(context.Background())
	logrus.WithFields(logrus.Fields{
		"deleted": len(result.Deleted),
		"failed":  len(result.Failed),
	}).Info("Shutting down")
	os.Exit(0)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	logLevel := flag.String("loglevel", "info", "Set the logging level: debug, info, warn, error, fatal, panic")
	listenAddr := flag.String("listen", ":3002", "Set the server listen address")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := loadConfig()
	store := stores.GetStore()
	ledger := broker.NewDeletionLedger(store)
	processor := broker.NewUploadProcessor(store, cfg.maxFileSize)
	channel := broker.NewPublicChannel(cfg.maxPublicHistory)

	ioo := websocket.NewServer(cfg.allowedOrigins)
	bcast := websocket.NewBroadcaster(ioo)
	registry := broker.NewRoomRegistry(processor, ledger, bcast)
	websocket.Register(ioo, bcast, channel, registry, processor, ledger, websocket.TokenAuthorizer(cfg.connectionToken))

	r := setupRouter(cfg, store, registry, ledger, ioo.ServeHandler(nil))

	ctx, cancel := context.WithCancel(context.Background())
	go runSweeper(ctx, ledger, cfg.sweepInterval)

	logrus.WithField("addr", *listenAddr).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddr, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo, ledger, cancel)
}
