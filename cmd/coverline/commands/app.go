package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/notify"
	"github.com/wonny/coverline/internal/policy"
	"github.com/wonny/coverline/internal/quoting"
	"github.com/wonny/coverline/internal/rating"
	"github.com/wonny/coverline/internal/store/memory"
	"github.com/wonny/coverline/internal/store/postgres"
	"github.com/wonny/coverline/internal/underwriting"
	"github.com/wonny/coverline/pkg/config"
	"github.com/wonny/coverline/pkg/database"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/redis"
)

const (
	redisPrefix = "coverline"
	lockTTL     = 30 * time.Second
)

// app is the wired dependency graph shared by the long-running commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil with the memory store
	redis   *redis.Client
	table   *rating.Table
	service *underwriting.Service
}

// newApp builds the service graph from config
// ⭐ SSOT: production wiring happens here only
func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(cfg)

	table, err := rating.Load(cfg.Policy.RatingTablePath)
	if err != nil {
		return nil, fmt.Errorf("load rating table: %w", err)
	}

	a := &app{cfg: cfg, log: log, table: table}

	var store contracts.Store
	switch cfg.Store {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		store = postgres.New(db)
	default:
		store = memory.New()
	}

	rc, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	deps := underwriting.Deps{
		Store:    store,
		Quotes:   quoting.NewFactory(rating.NewEngine(table, nil), nil, nil),
		Policies: policy.NewFactory(policy.Options{TermMonths: cfg.Policy.TermMonths, RenewalWindowDays: cfg.Policy.RenewalWindowDays}),
		Notifier: notify.New(cfg, nil, log),
		Logger:   log,
	}
	// Redis shares locks, cached quotes and the webhook budget across instances; without it the in-process defaults apply
	if rc.Enabled() {
		deps.Locker = redis.NewLocker(rc, redisPrefix, lockTTL)
		deps.Cache = redis.NewCache(rc, redisPrefix)
		deps.Notifier = notify.New(cfg, redis.NewRateLimiter(rc, redisPrefix), log)
	}
	a.service = underwriting.NewService(deps)

	hash, err := rating.Hash(table)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("hash rating table: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"store":        cfg.Store,
		"redis":        rc.Enabled(),
		"rating_table": table.Version,
		"rating_hash":  hash,
		"term_months":  a.service.TermMonths(),
		"renewal_days": a.service.RenewalWindowDays(),
		"webhook":      cfg.Webhook.URL != "",
	}).Info("Application wired")

	return a, nil
}

// ping checks the store before serving
func (a *app) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.service.Health(ctx)
}

// Close releases the database pool and redis client
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
