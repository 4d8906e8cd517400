package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	donorgin "github.com/PaulFidika/donorkit/adapters/gin"
	"github.com/PaulFidika/donorkit/adapters/ginutil"
	"github.com/PaulFidika/donorkit/core"
	memorylimiter "github.com/PaulFidika/donorkit/ratelimit/memory"
	redislimiter "github.com/PaulFidika/donorkit/ratelimit/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing page and the redeem, status and consume endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		sc, err := cfg.serviceConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		var limiter ginutil.RateLimiter = memorylimiter.New(nil)
		if b.rdb != nil {
			limiter = redislimiter.New(b.rdb, "", nil)
		}

		if !Verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := donorgin.NewServer(b.store, donorgin.Options{
			Config:   sc,
			Limiter:  limiter,
			Events:   core.LogrusEventLogger{Log: log},
			Log:      log,
			Language: &donorgin.LanguageConfig{Default: cfg.Lang},
			Client:   &donorgin.ClientConfig{Secure: cfg.SecureCookies},
		})

		if sw, ok := b.store.(core.Sweeper); ok {
			if _, err := core.ScheduleSweep(ctx, sw, cfg.SweepCron, nil, log); err != nil {
				return err
			}
		}

		hs := &http.Server{
			Addr:              cfg.Listen,
			Handler:           srv.Engine(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			log.WithField("addr", cfg.Listen).WithField("store", cfg.Store).Info("listening")
			errc <- hs.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	},
}
