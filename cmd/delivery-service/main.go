package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"delivery-service/internal/auth"
	"delivery-service/internal/config"
	"delivery-service/internal/db"
	"delivery-service/internal/eligibility"
	httphandler "delivery-service/internal/http"
	"delivery-service/internal/http/middleware"
	"delivery-service/internal/logger"
	"delivery-service/internal/model"
	"delivery-service/internal/notification"
	"delivery-service/internal/repository"
	"delivery-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	location, err := time.LoadLocation(cfg.Scheduling.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Scheduling.Timezone).Msg("invalid scheduling timezone")
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	deliveryRepo := repository.NewDeliveryRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	districtRepo := repository.NewDistrictRepository(database)
	scheduleRepo := repository.NewScheduleRepository(database)
	closureRepo := repository.NewClosureRepository(database)
	approvalRepo := repository.NewApprovalRepository(database)

	ruleStore := repository.NewRuleStore(database, scheduleRepo)
	clock := eligibility.LocationClock(location)
	engine := eligibility.New(ruleStore, clock, cfg.Scheduling.SameDayCutoffHour)

	var notifier notification.Notifier = notification.NopNotifier{}
	if cfg.SMS.Enabled {
		marker := smsMarker{repo: deliveryRepo}
		notifier = notification.NewSMSDispatcher(notification.NewLogSender(log), marker, log)
	}

	deliveryService := service.NewDeliveryService(
		deliveryRepo, vehicleRepo, districtRepo, approvalRepo,
		engine, notifier, clock, cfg.Scheduling.UserDailyCreateLimit,
	)

	approvalService := service.NewApprovalService(approvalRepo, deliveryRepo, notifier, clock)
	vehicleService := service.NewVehicleService(vehicleRepo, districtRepo, closureRepo, clock, cfg.Scheduling.DefaultVehicleDailyLimit)
	scheduleService := service.NewScheduleService(scheduleRepo, districtRepo, engine, clock)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(deliveryService, approvalService, vehicleService, scheduleService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting delivery scheduling service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type smsMarker struct {
	repo *repository.DeliveryRepository
}

func (m smsMarker) MarkSmsSent(ctx context.Context, doc *model.DeliveryDocument, column string) error {
	return m.repo.MarkSmsSent(ctx, doc.ID, column)
}
