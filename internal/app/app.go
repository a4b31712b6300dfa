package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/config"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/observability"
)

type App struct {
	cfg      config.Config
	log      *zap.Logger
	db       *pgxpool.Pool
	redis    *redis.Client
	services *Services
	router   *gin.Engine
}

// New connects to Postgres and Redis, applies migrations and wires the HTTP router.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a, err := newBase(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(cfg.PG.DSN, cfg.App.MigrationsDir); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	log.Info("migrations applied", zap.String("dir", cfg.App.MigrationsDir))

	a.router = newRouter(cfg, log, a.services)
	return a, nil
}

// NewWorker builds the service layer without migrations or a router; crmctl runs on it.
func NewWorker(cfg config.Config, log *zap.Logger) (*App, error) {
	return newBase(cfg, log)
}

func newBase(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	svc, err := buildServices(ctx, cfg, log, db, rdb)
	if err != nil {
		_ = rdb.Close()
		db.Close()
		return nil, err
	}
	a.services = svc
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Services() *Services {
	return a.services
}

// Close waits for running Pain Radar scans, then releases every connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.services != nil {
		done := make(chan error, 1)
		go func() { done <- a.services.close() }()
		select {
		case err := <-done:
			errs = append(errs, err)
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("waiting for background scans: %w", ctx.Err()))
		}
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// Migrate applies pending goose migrations from dir.
func Migrate(dsn, dir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, log *zap.Logger, svc *Services) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), observability.RequestLogger(log))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie", auth.WorkspaceHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	// Cookies need explicit origins; "*" falls back to a credential-less policy.
	if len(cfg.HTTP.AllowOrigins) == 0 || (len(cfg.HTTP.AllowOrigins) == 1 && cfg.HTTP.AllowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.HTTP.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	Setup(r, cfg, svc)
	return r
}
