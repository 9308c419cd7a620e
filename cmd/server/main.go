package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/controllers/http"
	"storefront/internal/infra"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/logger"
	"storefront/internal/repository"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	var repo repository.ReceiptRepository
	if cfg.MySQL.Enabled() {
		db, err := mmysql.NewMySQL(cfg.MySQL)
		if err != nil {
			lg.Fatal("db: connect", zap.Error(err))
		}
		repo = mysqlrepo.NewReceiptRepository(db, lg.Named("receipts"))
	} else {
		lg.Info("MYSQL_HOST not set, receipt journal disabled")
	}

	var publisher rabbitmq.PublisherInterface
	if cfg.RabbitMQ.Enabled() {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, lg.Named("amqp"))
		if err != nil {
			lg.Fatal("failed to init publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
	} else {
		lg.Info("RABBITMQ_URL not set, order events disabled")
	}

	storeClient := infra.NewStoreClient(cfg.StoreAPIURL, cfg.RequestTimeout)

	s := services.NewStorefrontService(repo, storeClient, publisher, lg, services.Options{
		CDNURL:         cfg.CDNURL,
		StrictContacts: cfg.StrictContacts,
		CatalogTTL:     cfg.Redis.CatalogTTL,
	})

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			DB:           cfg.Redis.DB,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		s.SetRedisClient(redisClient)
	} else {
		lg.Info("REDIS_HOST not set, catalog cache disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.WarmupDelay):
		}
		if err := s.WarmupCatalogCache(ctx); err != nil {
			lg.Warn("failed to warm up catalog cache", zap.Error(err))
		}
	}()

	handler := http.NewHandler(s, redisClient, lg.Named("http"))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("starting storefront", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.RunJanitor(gctx, time.Minute, cfg.SessionTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
	s.Wait()
	lg.Info("storefront stopped")
}
