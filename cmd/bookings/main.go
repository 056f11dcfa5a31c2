package main

import (
	"context"
	"time"

	"fitbook/internal/availability/exception"
	availrepo "fitbook/internal/availability/repository"
	availservice "fitbook/internal/availability/service"
	availvalidator "fitbook/internal/availability/validator"
	"fitbook/internal/bookings/handler"
	"fitbook/internal/bookings/lock"
	"fitbook/internal/bookings/repository"
	"fitbook/internal/bookings/service"
	"fitbook/internal/bookings/validator"
	"fitbook/pkg/app"
	"fitbook/pkg/config"
	"fitbook/pkg/events"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotificationTopic, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	bookingService := initServices(cfg, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	locker := lock.NewRedisSlotLocker(cfg.Client.Redis, cfg.BookingLockTTL, time.Duration(cfg.SlotDurationMin)*time.Minute)

	bookingService := service.NewBookingService(
		bookingRepo,
		notificationRepo,
		initAvailability(cfg, bookingRepo),
		locker,
		publisher,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Bookings service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initAvailability builds the resolver stack this service consults before
// admitting a booking. It reads the same collections the availability
// service writes.
func initAvailability(cfg *config.Config, bookingRepo repository.BookingRepository) availservice.AvailabilityService {
	exceptionStore := availrepo.NewMongoExceptionStore(cfg)
	exceptionCache := exception.NewCache(cfg.Client.Redis)
	exceptionManager := exception.NewManager(exceptionStore, exceptionCache, cfg.Log)

	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	exceptionManager.Probe(probeCtx)

	return availservice.NewAvailabilityService(
		availrepo.NewMongoRuleRepository(cfg),
		availrepo.NewMongoServiceRepository(cfg),
		exceptionManager,
		bookingRepo,
		availvalidator.NewRuleValidator(cfg.Log),
		cfg,
	)
}
