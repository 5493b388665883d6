package config

import "time"

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	DefaultPort          = "8080"
	DefaultLogLevel      = "info"
	DefaultStorageDriver = DriverMongo

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "deskbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPostgresURL = "postgres://localhost:5432/deskbook?sslmode=disable"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockTTL = 10 * time.Second
	DefaultTimezone       = "UTC"

	DefaultEventsEnabled         = false
	DefaultBookingEventsTopic    = "desk-bookings"
	DefaultBookingEventsDLQTopic = "desk-bookings-dlq"
)
