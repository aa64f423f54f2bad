package main

import (
	"context"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkravets/nestswap-messenger/internal/avatars"
	appConfig "github.com/dkravets/nestswap-messenger/internal/config"
	configHandler "github.com/dkravets/nestswap-messenger/internal/config/handler"
	conversationsrepo "github.com/dkravets/nestswap-messenger/internal/conversations/repo"
	conversationsservice "github.com/dkravets/nestswap-messenger/internal/conversations/service"
	conversationsHandler "github.com/dkravets/nestswap-messenger/internal/http-server/handlers/conversations"
	messagesHandler "github.com/dkravets/nestswap-messenger/internal/http-server/handlers/messages"
	unreadHandler "github.com/dkravets/nestswap-messenger/internal/http-server/handlers/unread"
	mwLogger "github.com/dkravets/nestswap-messenger/internal/http-server/middleware/logger"
	"github.com/dkravets/nestswap-messenger/internal/lib/logger/handlers/slogpretty"
	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	messagesrepo "github.com/dkravets/nestswap-messenger/internal/messages/repo"
	messagesservice "github.com/dkravets/nestswap-messenger/internal/messages/service"
	"github.com/dkravets/nestswap-messenger/internal/metrics"
	profilesclient "github.com/dkravets/nestswap-messenger/internal/profiles/client"
	"github.com/dkravets/nestswap-messenger/internal/realtime"
	rtlistener "github.com/dkravets/nestswap-messenger/internal/realtime/listener"
	"github.com/dkravets/nestswap-messenger/internal/session"
	storage "github.com/dkravets/nestswap-messenger/internal/storage/postgres"
	"github.com/dkravets/nestswap-messenger/internal/unread"
	wsHandler "github.com/dkravets/nestswap-messenger/internal/ws/handler"
	"github.com/dkravets/nestswap-messenger/internal/ws/hub"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	if err := godotenv.Load("infra/.env"); err != nil {
		stdlog.Println("No .env file found, skipping...")
	}

	cfg := appConfig.MustLoad()

	log := setupLogger(cfg.Env)
	log.Info("starting nestswap-messenger", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()

	h := hub.NewHub()
	go h.Run()

	region := os.Getenv("S3_REGION")
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)

	if err != nil {
		log.Error("failed to load aws config", sl.Err(err))
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = true
	})

	presigner := s3.NewPresignClient(s3Client)
	avatarService := avatars.New(cfg.Avatars.Bucket, cfg.Avatars.PresignTTL, presigner)

	profiles := profilesclient.New(cfg.ContentStore)

	convRepo := conversationsrepo.New(store.DB())
	convService := conversationsservice.New(convRepo, profiles, avatarService, cfg.App.PlaceholderAvatar, log)

	msgRepo := messagesrepo.New(store.DB())
	msgService := messagesservice.New(msgRepo)

	reconciler := unread.NewReconciler(convRepo, log)

	publisher := realtime.NewPublisher(store.DB(), cfg.Realtime.Channel)

	lst := rtlistener.New(
		cfg.DatabaseDSN,
		cfg.Realtime.Channel,
		cfg.Realtime.ReconnectDelay,
		reconciler,
		h,
		log,
	)
	go lst.Run(ctx)

	ch := conversationsHandler.New(convService, log)
	mh := messagesHandler.New(msgService, msgRepo, publisher, h, m, log)
	cfgHandler := configHandler.New(*cfg, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Post("/signin", func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("user_id")
		if raw == "" {
			http.Error(w, "missing user_id", http.StatusBadRequest)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:  "user_id",
			Value: raw,
			Path:  "/",
		})

		w.WriteHeader(http.StatusOK)
	})

	router.Get("/config", cfgHandler.GetConfig())
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(session.WithUser)

		r.Get("/conversations", ch.GetConversations())
		r.Post("/conversations", ch.CreateConversation())
		r.Post("/conversations/resolve", ch.ResolveConversation())
		r.Get("/conversations/{conversationId}", ch.GetConversation())

		r.Get("/conversations/{conversationId}/messages", mh.GetMessages())
		r.Post("/conversations/{conversationId}/messages", mh.SendMessage())
		r.Patch("/conversations/{conversationId}/read", mh.MarkRead())

		r.Get("/unread", unreadHandler.GetUnread(reconciler, m, log))

		r.Get("/ws", wsHandler.WSHandler(h, reconciler, m, log))
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Error("failed to start server", sl.Err(err))
	}

	log.Error("server stopped")
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return setupPrettySlog()
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
