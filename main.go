package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staysync/internal/auth"
	"staysync/internal/booking"
	"staysync/internal/booking/booking_api"
	bookingdb "staysync/internal/booking/db"
	bookingredis "staysync/internal/booking/redis"
	"staysync/internal/config"
	"staysync/internal/database/migrations"
	"staysync/internal/kafka"
	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/notification"
	"staysync/internal/payment"
	"staysync/internal/payment/payment_api"
	"staysync/internal/payment/providers"
	"staysync/internal/payment/reconciler"
	"staysync/internal/payment/storage"
	"staysync/internal/rooms"
	roomdb "staysync/internal/rooms/db"
	"staysync/internal/rooms/room_api"
	"staysync/internal/sse"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

func buildProviderRegistry(cfg *config.Config, logger *logger.Logger) *providers.Registry {
	registry := providers.NewRegistry()

	if cfg.Stripe.SecretKey != "" {
		stripeProvider, err := providers.NewStripeProvider(cfg.Stripe.SecretKey, logger)
		if err != nil {
			logger.Error("PAYMENT", fmt.Sprintf("Stripe provider init failed: %v", err))
		} else {
			registry.Register(models.ProviderStripe, stripeProvider)
			logger.Info("PAYMENT", "Stripe provider registered")
		}
	} else {
		logger.Warn("PAYMENT", "STRIPE_SECRET_KEY not set, stripe intents disabled")
	}

	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		razorpayProvider, err := providers.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger)
		if err != nil {
			logger.Error("PAYMENT", fmt.Sprintf("Razorpay provider init failed: %v", err))
		} else {
			registry.Register(models.ProviderRazorpay, razorpayProvider)
			logger.Info("PAYMENT", "Razorpay provider registered")
		}
	} else {
		logger.Warn("PAYMENT", "Razorpay keys not set, razorpay intents disabled")
	}

	return registry
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	logger.Info("DATABASE", "Schema migrations applied")

	var events *kafka.EventPublisher
	emitter := sse.NewBookingEventEmitter()

	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer := kafka.NewProducer(cfg.Kafka.Brokers)

		requiredTopics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingConfirmed,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.PaymentRecorded,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		events = kafka.NewEventPublisher(producer, cfg.Kafka.Topics, emitter)
	} else {
		logger.Warn("KAFKA", "Kafka disabled, booking events limited to the SSE stream")
		events = kafka.NewEventPublisher(nil, cfg.Kafka.Topics, emitter)
	}

	var notifier notification.Notifier
	if cfg.Email.Enabled {
		notifier = notification.NewSMTPNotifier(cfg.Email)
		logger.Info("NOTIFY", fmt.Sprintf("SMTP notifier enabled via %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort))
	} else {
		notifier = &notification.ConsoleNotifier{Logger: logger}
		logger.Info("NOTIFY", "Email disabled, logging notifications to console")
	}
	dispatcher := notification.NewDispatcher(notifier, logger)

	bookingStore := &bookingdb.DB{Bun: bunDB}
	roomStore := &roomdb.DB{Bun: bunDB}
	bookingLock := bookingredis.NewLock(redisClient)

	roomService := rooms.NewRoomService(roomStore)
	bookingService := booking.NewBookingService(bookingStore, roomStore, bookingLock, events, dispatcher, logger)
	bookingService.LockWait = cfg.Lock.AcquireWithin

	paymentStore := storage.NewBunStore(bunDB, logger)
	registry := buildProviderRegistry(cfg, logger)
	intentIssuer := payment.NewIntentIssuer(bookingStore, registry, logger)

	paymentReconciler := reconciler.NewReconciler(bookingStore, bookingService, paymentStore, bookingLock, events, dispatcher, logger)
	paymentReconciler.LockWait = cfg.Lock.AcquireWithin

	bookingHandler := booking_api.NewHandler(bookingService, emitter, logger)
	roomHandler := room_api.NewHandler(roomService, logger)
	paymentHandler := payment_api.NewHandler(intentIssuer, paymentReconciler, paymentStore, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Get("/api/rooms", roomHandler.ListRooms)
	r.Get("/api/rooms/{roomId}", roomHandler.GetRoom)
	// Provider outcome callbacks arrive without a guest token.
	r.Post("/api/payments/events", paymentHandler.ReconcileEvent)
	logger.Info("ROUTER", "Public room and payment-event endpoints registered")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		logger.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.CreateBooking)
			r.Get("/my", bookingHandler.ListMyBookings)
			r.Get("/{bookingId}", bookingHandler.GetBooking)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin())
				r.Get("/", bookingHandler.ListAllBookings)
				r.Put("/{bookingId}/status", bookingHandler.OverrideStatus)
				r.Get("/events/stream", bookingHandler.StreamBookingEvents)
			})
		})
		logger.Info("ROUTER", "Booking routes registered under /api/bookings")

		r.Route("/api/payments", func(r chi.Router) {
			r.Post("/intent", paymentHandler.CreateIntent)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin())
				r.Get("/booking/{bookingId}", paymentHandler.ListBookingPayments)
			})
		})
		logger.Info("ROUTER", "Payment routes registered under /api/payments")

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin())
			r.Post("/api/rooms", roomHandler.CreateRoom)
			r.Put("/api/rooms/{roomId}", roomHandler.UpdateRoom)
			r.Delete("/api/rooms/{roomId}", roomHandler.DeleteRoom)
		})
		logger.Info("ROUTER", "Admin room routes registered under /api/rooms")
	})

	// No WriteTimeout: the admin SSE stream holds its response open.
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Booking Service shutdown complete")
	}
}
