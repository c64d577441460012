package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	compliancehandler "taxsafe/internal/compliance/handler"
	"taxsafe/internal/platform/config"
	"taxsafe/internal/platform/httpserver"
	"taxsafe/internal/platform/logger"
	"taxsafe/internal/platform/metrics"
	rulesethandler "taxsafe/internal/ruleset/handler"
	httptransport "taxsafe/internal/transport/http"
	"taxsafe/pkg/requestcontext"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `serve starts the compliance API. Configuration comes from the environment:
DATABASE_URL selects the Postgres stores, REDIS_URL the expansion cache,
KAFKA_BROKERS the audit sink and TAXSAFE_RULESET_SEED the bundle activated
when no rule set is active.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), config.FromEnv(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the embedded SQL migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Server, migrate bool) error {
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	if cfg.AdminToken == "" {
		log.Warn("TAXSAFE_ADMIN_TOKEN is not set; admin endpoints will reject every request")
	}

	e, err := buildEngine(ctx, cfg, log, engineOptions{migrate: migrate})
	if err != nil {
		return err
	}
	defer e.Close()

	seedCtx := requestcontext.WithActor(requestcontext.WithRequestID(ctx, "startup-seed"), "system")
	if err := seedRuleSet(seedCtx, e.ruleSets, cfg.RuleSetSeedPath, log); err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(),
		AdminToken: cfg.AdminToken,
		Public:     []httptransport.Registrar{compliancehandler.New(e.compliance, log)},
		Admin:      []httptransport.Registrar{rulesethandler.New(e.ruleSets, log)},
		Health:     e.health,
	})
	srv := httpserver.New(cfg.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting taxsafe", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
