package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/advisory"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/api/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/api/travel"
	engine "github.com/FACorreiaa/go-travel-planner/internal/planner"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	PlannerService *planner.ServiceImpl
	PlannerHandler *planner.Handler
}

// NewContainer connects to the database and wires the planner stack.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	pool, err := database.Init(ctx, dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}

	c, err := New(ctx, cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.Pool = pool
	return c, nil
}

// New wires services over an existing connection.
func New(ctx context.Context, cfg *config.Config, db places.DB, logger *slog.Logger) (*Container, error) {
	catalog := places.NewCatalog(places.NewRepository(db, logger), cfg.Planner.CatalogCacheTTL, logger)

	oracle, err := newOracle(cfg.Routing, logger)
	if err != nil {
		return nil, err
	}

	var gen advisory.Generator
	if cfg.Advisory.APIKey != "" {
		g, err := advisory.NewGeminiGenerator(ctx, cfg.Advisory.APIKey, cfg.Advisory.Model)
		if err != nil {
			return nil, fmt.Errorf("advisory generator: %w", err)
		}
		gen = g
	} else {
		logger.Warn("No advisory API key configured, using built-in tips")
	}
	adv := advisory.NewService(gen, cfg.Advisory.CacheTTL, cfg.Advisory.Timeout, logger)

	builder := engine.NewAssembler(oracle, logger, assemblerOptions(cfg.Planner)...)

	svc := planner.NewServiceImpl(
		planner.NewRepository(db, logger),
		catalog,
		adv,
		builder,
		limits(cfg.Planner),
		metrics.Get(),
		logger,
	)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		PlannerService: svc,
		PlannerHandler: planner.NewHandler(svc, logger),
	}, nil
}

func newOracle(cfg config.RoutingConfig, logger *slog.Logger) (engine.TravelTimeOracle, error) {
	if cfg.APIKey == "" {
		logger.Warn("No routing API key configured, travel legs use straight-line estimates")
		return travel.EstimateOracle{}, nil
	}
	opts := []travel.ORSOption{travel.WithHTTPClient(&http.Client{Timeout: cfg.Timeout})}
	if cfg.BaseURL != "" {
		opts = append(opts, travel.WithBaseURL(cfg.BaseURL))
	}
	client, err := travel.NewORSClient(cfg.APIKey, cfg.CacheTTL, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("routing client: %w", err)
	}
	return client, nil
}

func assemblerOptions(cfg config.PlannerConfig) []engine.AssemblerOption {
	var opts []engine.AssemblerOption
	if cfg.LookupTimeout > 0 {
		opts = append(opts, engine.WithTravelTimeout(cfg.LookupTimeout))
	}
	if cfg.BudgetTolerance > 0 {
		opts = append(opts, engine.WithBudgetTolerance(cfg.BudgetTolerance))
	}
	if cfg.CostSeed != 0 {
		opts = append(opts, engine.WithCostSeed(cfg.CostSeed))
	}
	return opts
}

// limits overlays configured values on the defaults.
func limits(cfg config.PlannerConfig) planner.Limits {
	l := planner.DefaultLimits()
	setPositive(&l.PerInterest, cfg.PerInterestLimit)
	setPositive(&l.InterestPool, cfg.InterestPoolLimit)
	setPositive(&l.PerMustVisit, cfg.PerMustVisitLimit)
	setPositive(&l.MaxCandidates, cfg.MaxCandidates)
	setPositive(&l.InterestRadiusKm, cfg.InterestRadiusKm)
	setPositive(&l.MustVisitRadiusKm, cfg.MustVisitRadiusKm)
	setPositive(&l.EnrichmentTimeout, cfg.EnrichmentTimeout)
	return l
}

func setPositive[T int | float64 | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// Ping checks the database for the readiness probe.
func (c *Container) Ping(r *http.Request) error {
	if c.Pool == nil {
		return nil
	}
	return c.Pool.Ping(r.Context())
}
