package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"example.com/socialfeed/cmd/server"
	"example.com/socialfeed/cmd/worker"
	appkafka "example.com/socialfeed/internal/broker"
	config "example.com/socialfeed/internal/init"
	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/social"
	"github.com/gin-gonic/gin"
)

var logg = logger.New()

func main() {
	// Initialize application configuration
	cfg := config.Init()
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Activity stream: Kafka when enabled, log-only otherwise
	var writer appkafka.KafkaWriter = appkafka.LogWriter{}
	if cfg.KafkaEnabled {
		kw, err := appkafka.NewKafkaWriter(ctx, appkafka.KafkaConfig{
			Brokers:      []string{cfg.KafkaBroker},
			Topic:        cfg.KafkaTopic,
			Partition:    cfg.KafkaPartition,
			WriteTimeout: cfg.KafkaWriteTO,
		})
		if err != nil {
			logg.Error("main", "Kafka writer init failed", err)
			os.Exit(1)
		}
		writer = kw
	}

	w := worker.New(writer, cfg.WorkerCount, cfg.WorkerQueueSize)
	defer w.Close()

	reg := social.NewRegistry(
		social.WithUserScorer(social.NewScorer(cfg.UserPositiveWords...)),
		social.WithGlobalScorer(social.NewScorer(cfg.GlobalPositiveWords...)),
		social.WithObserver(w.Observe),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	server.Run(ctx, reg, server.Options{
		Addr:            cfg.ServerAddr,
		TLSCertFile:     cfg.TLSCertFile,
		TLSKeyFile:      cfg.TLSKeyFile,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})

	wg.Wait()
	logg.Info("main", "Shutdown completed")
}
