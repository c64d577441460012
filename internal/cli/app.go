package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	businessstore "taxsafe/internal/business/store"
	compliancemetrics "taxsafe/internal/compliance/metrics"
	"taxsafe/internal/compliance/ports"
	complianceservice "taxsafe/internal/compliance/service"
	"taxsafe/internal/compliance/store/cache"
	"taxsafe/internal/compliance/store/evaluation"
	"taxsafe/internal/compliance/store/issue"
	"taxsafe/internal/compliance/store/obligation"
	"taxsafe/internal/compliance/store/score"
	"taxsafe/internal/platform/config"
	platformredis "taxsafe/internal/platform/redis"
	"taxsafe/internal/ruleset/loader"
	rulesetmetrics "taxsafe/internal/ruleset/metrics"
	rulesetservice "taxsafe/internal/ruleset/service"
	"taxsafe/internal/ruleset/store/memory"
	"taxsafe/internal/ruleset/store/postgres"
	httptransport "taxsafe/internal/transport/http"
	"taxsafe/migrations"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/audit/publisher"
	kafkastore "taxsafe/pkg/platform/audit/store/kafka"
	auditmemory "taxsafe/pkg/platform/audit/store/memory"
	txcontext "taxsafe/pkg/platform/tx"
)

const dbPingTimeout = 5 * time.Second

// ruleSetStore is what both the admin service and the engine need from a
// rule-set backend.
type ruleSetStore interface {
	rulesetservice.Store
	MarkReferenced(ctx context.Context, ruleSetID id.RuleSetID) error
}

// engine holds the wired services and the resources to release on shutdown.
type engine struct {
	ruleSets   *rulesetservice.Service
	compliance *complianceservice.Service
	business   *businessstore.InMemory
	health     map[string]httptransport.HealthCheck
	closers    []func()
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

type engineOptions struct {
	migrate bool
}

func buildEngine(ctx context.Context, cfg config.Server, log *slog.Logger, opts engineOptions) (_ *engine, err error) {
	e := &engine{health: map[string]httptransport.HealthCheck{}}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	e.business = businessstore.NewInMemory()
	if cfg.BusinessFixturesPath != "" {
		n, err := businessstore.LoadFixturesFile(ctx, e.business, cfg.BusinessFixturesPath)
		if err != nil {
			return nil, fmt.Errorf("load business fixtures: %w", err)
		}
		log.InfoContext(ctx, "business fixtures loaded", "businesses", n, "path", cfg.BusinessFixturesPath)
	}

	auditStore, err := e.auditStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	pub := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Engine.AuditBuffer),
		publisher.WithLogger(log),
	)
	e.closers = append(e.closers, pub.Close)

	deps := memoryDependencies(nil, e.business)
	var ruleSets ruleSetStore = memory.New()
	rulesetOpts := []rulesetservice.Option{
		rulesetservice.WithLogger(log),
		rulesetservice.WithAuditPublisher(pub),
		rulesetservice.WithMetrics(rulesetmetrics.New()),
	}
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(ctx, cfg.DatabaseURL, opts.migrate)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = db.Close() })
		e.health["postgres"] = db.PingContext

		ruleSets = postgres.New(db)
		rulesetOpts = append(rulesetOpts, rulesetservice.WithTx(txcontext.NewRunner(db)))
		deps.Issues = issue.NewPostgres(db)
		log.InfoContext(ctx, "using postgres rule-set and review-issue stores")
	}
	deps.RuleSets = ruleSets

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		e.closers = append(e.closers, func() { _ = redisClient.Close() })
		e.health["redis"] = redisClient.Health
		deps.ExpansionCache = cache.NewRedis(redisClient.Client, cfg.Redis.CacheTTL, cache.WithLogger(log))
	} else {
		deps.ExpansionCache = cache.NewInMemory(cfg.Redis.CacheTTL)
	}

	e.ruleSets = rulesetservice.New(ruleSets, rulesetOpts...)
	e.compliance = complianceservice.New(deps,
		complianceservice.WithLogger(log),
		complianceservice.WithAuditPublisher(pub),
		complianceservice.WithMetrics(compliancemetrics.New()),
		complianceservice.WithRefreshConcurrency(cfg.Engine.RefreshConcurrency),
	)
	return e, nil
}

func (e *engine) auditStore(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return auditmemory.NewInMemoryStore(), nil
	}
	client, err := kafkastore.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, client.Close)
	if err := kafkastore.EnsureTopic(ctx, client, cfg.Kafka.Topic, cfg.Kafka.Partitions); err != nil {
		return nil, err
	}
	log.Info("publishing audit events to kafka", "topic", cfg.Kafka.Topic, "brokers", len(cfg.Kafka.Brokers))
	return kafkastore.New(client, cfg.Kafka.Topic), nil
}

func openDatabase(ctx context.Context, url string, migrate bool) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if migrate {
		if err := migrations.Apply(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// memoryDependencies wires the engine to in-memory stores. Nil arguments get
// fresh empty stores.
func memoryDependencies(ruleSets ports.RuleSetReader, business *businessstore.InMemory) complianceservice.Dependencies {
	if ruleSets == nil {
		ruleSets = memory.New()
	}
	if business == nil {
		business = businessstore.NewInMemory()
	}
	return complianceservice.Dependencies{
		Profiles:     business,
		Transactions: business,
		Tasks:        business,
		Fulfillments: business,
		RuleSets:     ruleSets,
		Evaluations:  evaluation.NewInMemory(),
		Obligations:  obligation.NewInMemory(),
		Issues:       issue.NewInMemory(),
		Scores:       score.NewInMemory(),
	}
}

// seedRuleSet imports and activates the bundle at path when no rule set is
// active. A bundle whose version already exists is left alone.
func seedRuleSet(ctx context.Context, svc *rulesetservice.Service, path string, log *slog.Logger) error {
	if path == "" {
		return nil
	}
	if active, err := svc.Active(ctx); err == nil {
		log.InfoContext(ctx, "rule set already active, skipping seed", "version", active.Version)
		return nil
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return err
	}

	bundle, err := loader.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load rule-set seed: %w", err)
	}
	rs, err := svc.Import(ctx, bundle, true)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			log.WarnContext(ctx, "rule-set seed version exists but is not active", "version", bundle.Version)
			return nil
		}
		return fmt.Errorf("import rule-set seed: %w", err)
	}
	log.InfoContext(ctx, "rule set seeded", "version", rs.Version, "rules", len(rs.Rules), "deadlines", len(rs.Deadlines))
	return nil
}
