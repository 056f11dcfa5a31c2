package main

import (
	"context"

	"fitbook/internal/availability/exception"
	"fitbook/internal/availability/handler"
	availrepo "fitbook/internal/availability/repository"
	"fitbook/internal/availability/service"
	"fitbook/internal/availability/validator"
	bookingrepo "fitbook/internal/bookings/repository"
	"fitbook/pkg/app"
	"fitbook/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	ruleValidator := validator.NewRuleValidator(cfg.Log)
	ruleRepo := availrepo.NewMongoRuleRepository(cfg)
	serviceRepo := availrepo.NewMongoServiceRepository(cfg)

	exceptionStore := availrepo.NewMongoExceptionStore(cfg)
	exceptionCache := exception.NewCache(cfg.Client.Redis)
	exceptionManager := exception.NewManager(exceptionStore, exceptionCache, cfg.Log)

	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	exceptionManager.Probe(probeCtx)

	bookingReader := bookingrepo.NewMongoBookingRepository(cfg)

	availabilityService := service.NewAvailabilityService(
		ruleRepo,
		serviceRepo,
		exceptionManager,
		bookingReader,
		ruleValidator,
		cfg,
	)

	cfg.Log.Info("Availability service initialized",
		"database", cfg.MongoDatabaseName,
		"exception_store_healthy", exceptionManager.PrimaryHealthy(),
	)
	return availabilityService
}
