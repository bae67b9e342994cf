package main

import (
	"context"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/backend/api/handler"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/config"
	boltinfra "github.com/taskflow/backend/repository/bolt"
	pgrepo "github.com/taskflow/backend/repository/postgres"

	"github.com/taskflow/backend/internal/infrastructure/monitor"
	pginfra "github.com/taskflow/backend/internal/infrastructure/postgres"
	"github.com/taskflow/backend/internal/infrastructure/rabbit"
	redisinfra "github.com/taskflow/backend/internal/infrastructure/redis"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/notify"
	"github.com/taskflow/backend/internal/router"
	"github.com/taskflow/backend/internal/services/lifecycle"
	"github.com/taskflow/backend/pkg/httpcontext"
	"github.com/taskflow/backend/pkg/logger"
	"github.com/taskflow/backend/repository"
	commentUC "github.com/taskflow/backend/usecase/comment"
	projectUC "github.com/taskflow/backend/usecase/project"
	taskUC "github.com/taskflow/backend/usecase/task"
	userUC "github.com/taskflow/backend/usecase/user"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redislib "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	manager := lifecycle.NewManager(log)

	guard := domain.Guard{Max: cfg.Capacity.MaxActiveTasks}

	// Storage backend is chosen once at boot, never per request.
	var (
		pool      *pgxpool.Pool
		boltStore *boltinfra.Store

		taskRepo    repository.TaskRepository
		userRepo    repository.UserRepository
		projectRepo repository.ProjectRepository
		commentRepo repository.CommentRepository
	)

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if cfg.Migrations.Enabled {
			if err := pginfra.RunMigrations(cfg.Database, cfg.Migrations, log); err != nil {
				return err
			}
		}
		var err error
		pool, err = pginfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		taskRepo = pgrepo.NewTaskRepository(pool, guard)
		userRepo = pgrepo.NewUserRepository(pool)
		projectRepo = pgrepo.NewProjectRepository(pool)
		commentRepo = pgrepo.NewCommentRepository(pool)

	case config.BackendBolt:
		var err error
		boltStore, err = boltinfra.Open(cfg.Storage.BoltPath)
		if err != nil {
			return err
		}
		manager.Register("bolt", func(context.Context) error {
			return boltStore.Close()
		})
		taskRepo = boltinfra.NewTaskRepository(boltStore, guard)
		userRepo = boltinfra.NewUserRepository(boltStore)
		projectRepo = boltinfra.NewProjectRepository(boltStore)
		commentRepo = boltinfra.NewCommentRepository(boltStore)
	}

	log.Info("storage backend ready", zap.String("backend", cfg.Storage.Backend))

	// Redis and RabbitMQ are optional. A failed connection disables the
	// cache or the publisher but never keeps the server from starting.
	var redisClient *redislib.Client
	if client, err := redisinfra.NewClient(ctx, cfg.Redis, log); err != nil {
		log.Warn("redis unavailable, board cache disabled", zap.Error(err))
	} else {
		redisClient = client
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}

	var (
		rabbitConn *amqp.Connection
		publisher  notify.Publisher
	)
	if conn, err := rabbit.NewConnection(cfg.Rabbit); err != nil {
		log.Warn("rabbitmq unavailable, notifications disabled", zap.Error(err))
	} else {
		rabbitConn = conn
		manager.Register("rabbitmq", func(context.Context) error {
			return rabbitConn.Close()
		})
		pub, err := notify.NewAMQPPublisher(rabbitConn, cfg.Rabbit.Queue, log)
		if err != nil {
			log.Warn("notification queue setup failed, notifications disabled", zap.Error(err))
		} else {
			publisher = pub
		}
	}

	mon := monitor.New(pool, boltStore, redisClient, rabbitConn, 30*time.Second, log)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	boardCache := cache.New(redisClient, log)

	taskService := taskUC.New(taskRepo, userRepo, boardCache, publisher, guard, cfg.Cache.BoardTTL, log)
	commentService := commentUC.New(commentRepo, boardCache, cfg.Cache.CommentsTTL, log)
	projectService := projectUC.New(projectRepo, log)
	userService := userUC.New(userRepo, log)

	adapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:    handler.NewTaskHandler(taskService, adapter, log),
		Comment: handler.NewCommentHandler(commentService, adapter, log),
		Project: handler.NewProjectHandler(projectService, adapter, log),
		User:    handler.NewUserHandler(userService, adapter, log),
		Health:  handler.NewHealthHandler(mon, adapter, log),
	}

	middlewares := []router.Middleware{middleware.CORS(cfg.CORSOrigin)}
	if cfg.JWT.Secret != "" {
		middlewares = append(middlewares, middleware.JWTAuth(cfg.JWT.Secret, log))
	}

	r := router.New(handlers, middlewares...)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		Name:         cfg.AppName,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe(addr)
	}()

	listenCtx, cancel := context.WithCancel(ctx)
	go func() {
		manager.Listen(listenCtx)
		cancel()
	}()

	select {
	case err := <-errCh:
		cancel()
		return err
	case <-listenCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Context.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	return manager.Shutdown(shutdownCtx)
}
