package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	pricingapp "staybook/internal/app/handlers/pricing"
	reportingapp "staybook/internal/app/handlers/reporting"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.Debug)

	storage, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer storage.close(context.Background())

	notifier, closeNotifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Error("notifier init failed", "error", err)
		os.Exit(1)
	}
	defer closeNotifier()

	rates := domainpricing.FeeRates{
		GuestServiceBps: cfg.GuestServiceFeeBps,
		HostServiceBps:  cfg.HostServiceFeeBps,
		TaxBps:          cfg.OccupancyTaxBps,
	}
	handlers := buildHandlers(storage.factory, rates, notifier, logger)

	if cfg.StorageMode == "memory" {
		path := getenv("PROPERTY_FIXTURES", "fixtures/properties.json")
		if err := loadPropertyFixtures(ctx, storage.factory, path, cfg.Currency, logger); err != nil {
			logger.Warn("property fixtures load failed", "error", err, "path", path)
		}
	}

	health := obs.HealthHandlers{Checks: storage.checks}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, health, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type storageSet struct {
	factory uow.Factory
	checks  map[string]obs.ReadinessCheck
	close   func(ctx context.Context)
}

func buildStorage(cfg config.Config, logger *slog.Logger) (storageSet, error) {
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storageSet{}, err
		}
		return storageSet{
			factory: mongostore.NewFactory(client.DB),
			checks:  map[string]obs.ReadinessCheck{"mongo": client.Ping},
			close: func(ctx context.Context) {
				if err := client.DB.Client().Disconnect(ctx); err != nil {
					logger.Warn("mongo disconnect failed", "error", err)
				}
			},
		}, nil
	default:
		store := memory.NewStore()
		return storageSet{
			factory: memory.Factory{Store: store},
			checks:  map[string]obs.ReadinessCheck{},
			close:   func(context.Context) {},
		}, nil
	}
}

func buildNotifier(cfg config.Config, logger *slog.Logger) (policies.Notifier, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, notifications disabled")
		return policies.NopNotifier{}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	return kafka.Notifier{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix}, closer, nil
}

func buildHandlers(factory uow.Factory, rates domainpricing.FeeRates, notifier policies.Notifier, logger *slog.Logger) ginserver.Handlers {
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Rates:      rates,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.AcceptBookingCommand{}.Key(), &bookingapp.AcceptBookingHandler{
		UoWFactory: factory,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.DeclineBookingCommand{}.Key(), &bookingapp.DeclineBookingHandler{
		UoWFactory: factory,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: factory,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		UoWFactory: factory,
		Notifier:   notifier,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, pricingapp.QuoteStayQuery{}.Key(), &pricingapp.QuoteStayHandler{
		UoWFactory: factory,
		Rates:      rates,
	})
	queries.RegisterHandler(queryBus, reportingapp.ListGuestBookingsQuery{}.Key(), &reportingapp.ListGuestBookingsHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, reportingapp.ListHostBookingsQuery{}.Key(), &reportingapp.ListHostBookingsHandler{
		UoWFactory: factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, reportingapp.HostEarningsQuery{}.Key(), &reportingapp.HostEarningsHandler{
		UoWFactory: factory,
	})

	return ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Commands: commandBus, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Queries: queryBus, Logger: logger},
		Pricing:      ginserver.PricingHandler{Queries: queryBus, Logger: logger},
		Reporting:    ginserver.ReportingHandler{Queries: queryBus, Logger: logger},
	}
}

type propertyFixture struct {
	ID                     string   `json:"id"`
	Host                   string   `json:"host"`
	Title                  string   `json:"title"`
	MaxGuests              int      `json:"max_guests"`
	MinimumStay            int      `json:"minimum_stay"`
	MaximumStay            int      `json:"maximum_stay"`
	InstantBook            bool     `json:"instant_book"`
	CancellationPolicyID   string   `json:"cancellation_policy_id"`
	BasePricePerNightCents int64    `json:"base_price_per_night_cents"`
	CleaningFeeCents       int64    `json:"cleaning_fee_cents"`
	WeeklyDiscountPercent  int      `json:"weekly_discount_percent"`
	MonthlyDiscountPercent int      `json:"monthly_discount_percent"`
	BlockedDates           []string `json:"blocked_dates"`
}

func loadPropertyFixtures(ctx context.Context, factory uow.Factory, path, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, fx := range fixtures {
		base, err := money.New(fx.BasePricePerNightCents, currency)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		cleaning, err := money.New(fx.CleaningFeeCents, currency)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		blocked := make([]time.Time, 0, len(fx.BlockedDates))
		for _, raw := range fx.BlockedDates {
			day, err := time.Parse("2006-01-02", raw)
			if err != nil {
				logger.Error("fixture blocked date invalid", "property_id", fx.ID, "date", raw, "error", err)
				continue
			}
			blocked = append(blocked, day)
		}
		p := &domainproperty.Property{
			ID:                   domainproperty.PropertyID(fx.ID),
			Host:                 domainproperty.HostID(fx.Host),
			Title:                fx.Title,
			MaxGuests:            fx.MaxGuests,
			MinimumStay:          fx.MinimumStay,
			MaximumStay:          fx.MaximumStay,
			InstantBook:          fx.InstantBook,
			CancellationPolicyID: fx.CancellationPolicyID,
			Pricing: domainproperty.PricingConfig{
				BasePricePerNight:      base,
				CleaningFee:            cleaning,
				WeeklyDiscountPercent:  fx.WeeklyDiscountPercent,
				MonthlyDiscountPercent: fx.MonthlyDiscountPercent,
			},
			BlockedDates: blocked,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := unit.Properties().Save(ctx, p); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", fx.ID)
	}
	return unit.Commit(ctx)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
