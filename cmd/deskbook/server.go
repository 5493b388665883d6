package main

import (
	"context"
	"fmt"

	"deskbook/internal/bookings/events"
	"deskbook/internal/bookings/handler"
	"deskbook/internal/bookings/repository"
	"deskbook/internal/bookings/service"
	"deskbook/internal/bookings/validator"
	"deskbook/pkg/app"
	"deskbook/pkg/config"
	"deskbook/pkg/kafka"
	kafka_middleware "deskbook/pkg/kafka/middleware"
	"deskbook/pkg/model"
	"deskbook/pkg/otelx"

	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the booking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(ServiceName)

			shutdownTracing, err := otelx.Setup(cmd.Context(), cfg.Telemetry)
			if err != nil {
				return fmt.Errorf("tracing setup: %w", err)
			}

			var seed []*model.Desk
			if seedPath != "" {
				if seed, err = repository.LoadDeskSeed(seedPath); err != nil {
					return err
				}
			}

			cfg.SetStorage()
			cfg.SetRedis()

			bookingRepo, deskRepo, err := repository.New(cfg, seed)
			if err != nil {
				return err
			}

			publisher, err := newPublisher(cfg)
			if err != nil {
				return err
			}

			bookingValidator := validator.NewBookingValidator(cfg.Log)
			bookingService := service.NewBookingService(
				bookingRepo,
				deskRepo,
				bookingValidator,
				cfg.Log,
				service.WithLocation(cfg.Location),
				service.WithPublisher(publisher),
			)
			cfg.Log.Info("Booking service initialized", "storage_driver", cfg.StorageDriver, "timezone", cfg.Location.String())

			serverApp := app.NewApplication(cfg)
			serverApp.SetApp(
				handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log),
				handler.NewHealthHandler(bookingRepo, cfg.Log),
			)
			serverApp.OnShutdown("events", func(context.Context) error { return publisher.Close() })
			serverApp.OnShutdown("tracing", shutdownTracing)
			serverApp.Run()
			return nil
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file of desks to load into the memory store")
	return cmd
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.EventsEnabled {
		return events.NewNoopPublisher(), nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Kafka.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic, "dlq_topic", cfg.BookingEventsDLQTopic)
	return events.NewKafkaPublisher(producer, cfg.Log), nil
}
