package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpadp "expense-approval/internal/adapter/http"
	"expense-approval/internal/adapter/middleware"
	"expense-approval/internal/adapter/repository/mysql"
	"expense-approval/internal/config"
	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/infrastructure/cache"
	"expense-approval/internal/infrastructure/db"
	approvaluc "expense-approval/internal/usecase/approval"
	expenseuc "expense-approval/internal/usecase/expense"
	roleuc "expense-approval/internal/usecase/role"
	useruc "expense-approval/internal/usecase/user"
	workflowuc "expense-approval/internal/usecase/workflow"
	"expense-approval/pkg/logger"
)

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	pool := db.DefaultPool
	if cfg.MySQLMaxOpenConns > 0 {
		pool.MaxOpen = cfg.MySQLMaxOpenConns
	}
	if cfg.MySQLMaxIdleConns > 0 {
		pool.MaxIdle = cfg.MySQLMaxIdleConns
	}
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.WithLogger(zl), db.WithPool(pool))
	if err != nil {
		zl.Fatal("mysql connect failed", zap.Error(err))
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zl.Fatal("mysql handle", zap.Error(err))
	}

	rpool := cache.DefaultPool
	if cfg.RedisPoolSize > 0 {
		rpool.Size = cfg.RedisPoolSize
	}
	if cfg.RedisMinIdleConns > 0 {
		rpool.MinIdle = cfg.RedisMinIdleConns
	}
	if cfg.RedisDialTimeout > 0 {
		rpool.DialTimeout = cfg.RedisDialTimeout
	}
	if cfg.RedisReadTimeout > 0 {
		rpool.ReadTimeout = cfg.RedisReadTimeout
		rpool.WriteTimeout = cfg.RedisReadTimeout
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cache.WithDB(cfg.RedisDB), cache.WithPool(rpool), cache.WithLogger(zl))
	if err != nil {
		zl.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()

	// repositories
	expenses := mysql.NewExpenseRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	workflows := mysql.NewWorkflowRepository(gdb)
	roles := mysql.NewRoleRepository(gdb)
	audits := mysql.NewAuditRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	resolver := cache.NewCachedResolver(role.NewRegistryResolver(roles, zl), rdb, cfg.RoleCacheTTL, zl)
	engine := approval.NewEngine(resolver, approval.WithManagerPolicy(approval.ManagerPolicy(cfg.ManagerPolicy)))
	metrics := middleware.NewMetrics()

	// usecases
	expenseUC := expenseuc.NewUsecase(expenses, users, tx, engine, zl)
	approvalUC := approvaluc.NewUsecase(approvaluc.Deps{
		Expenses:  expenses,
		Workflows: workflows,
		Users:     users,
		Audit:     audits,
		UoW:       tx,
		Engine:    engine,
		Metrics:   metrics,
		Log:       zl,
	})
	workflowUC := workflowuc.NewUsecase(workflows, users, resolver, zl)
	roleUC := roleuc.NewUsecase(roles, tx, resolver, zl)
	userUC := useruc.NewUsecase(users, tx, zl)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.ErrorHandler
	e.Use(echomw.Recover(), middleware.RequestLogger(zl), metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	httpadp.Router{
		Health:    httpadp.NewHandler(map[string]httpadp.Pinger{"mysql": sqlPinger{sqlDB}, "redis": redisPinger{rdb}}),
		Expenses:  httpadp.NewExpenseHandler(expenseUC, approvalUC),
		Workflows: httpadp.NewWorkflowHandler(workflowUC),
		Roles:     httpadp.NewRoleHandler(roleUC),
		Users:     httpadp.NewUserHandler(userUC),
	}.Register(e,
		middleware.Auth([]byte(cfg.JWTSecret), users, zl),
		middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zl),
	)

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr), zap.String("manager_policy", string(engine.Policy())))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	_ = sqlDB.Close()
}
