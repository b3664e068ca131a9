package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/clients/kafka"
	"max.ks1230/expense-tracker/internal/clients/tg"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/metrics"
	"max.ks1230/expense-tracker/internal/model/messages"
	"max.ks1230/expense-tracker/internal/model/session"
	"max.ks1230/expense-tracker/internal/model/storage"
	"max.ks1230/expense-tracker/internal/tracing"
)

func main() {
	defer logger.Sync()
	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(conf.Jaeger())
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			logger.Error("failed to close tracer", zap.Error(err))
		}
	}()

	store, closeStore, err := newCredentialStore(ctx, conf)
	if err != nil {
		logger.Fatal("failed to init credential store", zap.Error(err))
	}
	defer closeStore()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client", zap.Error(err))
	}

	loc := conf.App().Location()
	clock := func() time.Time { return time.Now().In(loc) }
	opts := []session.Option{
		session.WithClock(clock),
		session.WithAuthListener(messages.ExpiryNotifier(client)),
	}

	if conf.Kafka().Enabled() {
		producer, err := kafka.NewProducer(conf.Kafka())
		if err != nil {
			logger.Fatal("failed to init kafka producer", zap.Error(err))
		}
		defer producer.Close()
		opts = append(opts, session.WithEventSink(producer.Sink))
	}

	sessions := session.NewRegistry(store, conf.API(), opts...)
	msgService := messages.NewService(client, sessions, messages.WithLocation(loc), messages.WithClock(clock))

	logger.Info("Bot init - end")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(ctx, conf.App().MetricsAddr())
	})
	g.Go(func() error {
		client.ListenUpdates(ctx, msgService)
		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error("bot stopped", zap.Error(err))
	}
	sessions.Wait()
}

func newCredentialStore(ctx context.Context, conf *config.Service) (session.CredentialStore, func(), error) {
	switch conf.App().CredentialStore() {
	case config.StoreMemcached:
		mc, err := cache.NewMemcache(conf.Memcached())
		if err != nil {
			return nil, nil, errors.Wrap(err, "memcached")
		}
		return mc, func() {}, nil
	case config.StorePostgres:
		db, err := storage.NewPostgresStorage(ctx, conf.Postgres())
		if err != nil {
			return nil, nil, errors.Wrap(err, "postgres")
		}
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close postgres", zap.Error(err))
			}
		}, nil
	default:
		return storage.NewInMemStorage(), func() {}, nil
	}
}
