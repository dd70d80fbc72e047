package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/tracing"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/processor"
	"github.com/Ramsey-B/fern/pkg/skill"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	if cfg.TracingEnabled {
		providerCfg := tracing.DefaultProviderConfig(cfg.AppName)
		providerCfg.Endpoint = cfg.TracingEndpoint
		providerCfg.Insecure = cfg.TracingInsecure
		providerCfg.Enabled = true

		shutdown, err := tracing.InitProvider(ctx, providerCfg)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to initialize tracing, continuing without it")
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(flushCtx)
			}()
		}
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	defer producer.Close()

	emitter := events.NewEmitter(producer, logger)
	skills := skill.NewStore(logger, cfg.SkillDirectory)
	proc := processor.NewProcessor(logger, skills, emitter, cfg.MatchWorkerCount)

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(cfg, logger, proc.HandleMessage)
		if err := consumer.Start(ctx); err != nil {
			logger.WithContext(ctx).WithError(err).Error("Failed to start consumer")
			os.Exit(1)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.WithContext(ctx).Info("Shutting down")
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.WithContext(ctx).WithError(err).Error("Failed to stop consumer cleanly")
		}
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}
