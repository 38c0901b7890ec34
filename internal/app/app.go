package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sanioooook/TodoApp/internal/cache"
	"github.com/sanioooook/TodoApp/internal/config"
	"github.com/sanioooook/TodoApp/internal/logging"
	"github.com/sanioooook/TodoApp/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// stores is the storage backend chosen by STORE_DRIVER.
type stores struct {
	lists repo.ListRepo
	users repo.UserRepo
	ping  func(ctx context.Context) error
}

type App struct {
	cfg    config.Config
	log    *logging.Logger
	pg     *pgxpool.Pool
	sqlite *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

// New connects the store, migrates it, connects Redis when configured and
// builds the router.
func New(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var listCache *cache.ListCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rdb
		listCache = cache.NewListCache(rdb, cfg.Redis.DefaultTTL.Duration())
	} else {
		log.Info("redis not configured, list cache disabled")
	}

	a.router = newRouter(cfg, log, st, listCache)
	return a, nil
}

// Migrate applies pending migrations to the configured store and returns.
func Migrate(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	a := &App{cfg: cfg, log: log}
	if _, err := a.openStore(ctx); err != nil {
		return err
	}
	defer a.Close()
	return a.migrate(ctx)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases the store and Redis connections.
func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		return a.sqlite.Close()
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (stores, error) {
	switch a.cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, a.cfg.Store.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		a.sqlite = db
		a.log.Database("sqlite opened", "path", a.cfg.Store.SQLitePath)
		return stores{
			lists: repo.NewSQLiteListRepo(db),
			users: repo.NewSQLiteUserRepo(db),
			ping:  db.PingContext,
		}, nil
	default:
		pool, err := newPostgres(ctx, a.cfg.Store.DSN)
		if err != nil {
			return stores{}, err
		}
		a.pg = pool
		a.log.Database("postgres connected")
		return stores{
			lists: repo.NewPGListRepo(pool),
			users: repo.NewPGUserRepo(pool),
			ping:  pool.Ping,
		}, nil
	}
}

func (a *App) migrate(ctx context.Context) error {
	var (
		n   int
		err error
	)
	if a.sqlite != nil {
		n, err = repo.Migrate(ctx, a.sqlite, repo.DialectSQLite)
	} else {
		n, err = repo.MigratePostgres(ctx, a.cfg.Store.DSN)
	}
	if err != nil {
		return err
	}
	a.log.Database("migrations applied", "count", n)
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, log *logging.Logger, st stores, listCache *cache.ListCache) *gin.Engine {
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), log.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-User-Id"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, log, st, listCache)
	return r
}
