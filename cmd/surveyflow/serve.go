package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest"
	"surveyflow/internal/transport/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session API and event feed",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	secret, err := cfg.Auth.Secret()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	authSvc := service.NewAuthService(secret, cfg.Auth.SessionTTL)
	surveySvc := service.NewSurveyService(b.source, b.cache, log)
	sessionSvc := service.NewSessionService(surveySvc, b.submitter, authSvc, cfg.Sessions.MaxIdle, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		SurveyService:  surveySvc,
		SessionService: sessionSvc,
		WSHub:          wsHub,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sessionSvc.RunJanitor(gctx, cfg.Sessions.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited", zap.Int("open_sessions", sessionSvc.Count()))
	return nil
}
