package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tammy-rb/siri-cosmetics-server/libs/config"
	"github.com/tammy-rb/siri-cosmetics-server/libs/httpx"
	"github.com/tammy-rb/siri-cosmetics-server/libs/kafkax"
	otelx "github.com/tammy-rb/siri-cosmetics-server/libs/otel"
	"github.com/tammy-rb/siri-cosmetics-server/libs/runtime"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/booking"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/consumer"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/handlers"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "clinic-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext(logger)
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := time.LoadLocation(config.String("CLINIC_TIMEZONE", "UTC"))
	if err != nil {
		panic(err)
	}

	st, err := openStores(ctx, logger)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		panic(err)
	}
	defer st.Close()

	brokers := config.String("KAFKA_BROKERS", "")
	if st.pool != nil {
		outboxPublisher := outbox.NewPublisher(st.pool, st.outbox, logger, outbox.PublisherConfig{
			Brokers:   brokers,
			PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
			Retention: config.Duration("OUTBOX_RETENTION", 7*24*time.Hour),
		})
		go outboxPublisher.Run(ctx)
	}

	sched := scheduling.New(st.schedule, st.appts, scheduling.Config{
		Location:               loc,
		DefaultDurationMinutes: config.Int("DEFAULT_DURATION_MINUTES", 30),
		GranularityMinutes:     config.Int("SLOT_GRANULARITY_MINUTES", 15),
		WeeklyCacheTTL:         config.Duration("WEEKLY_CACHE_TTL", time.Minute),
		MonthWorkers:           config.Int("MONTH_WORKERS", 8),
	})
	bookingSvc := booking.NewService(st.appts, st.types, sched, logger, booking.Config{Location: loc})
	typeSvc := booking.NewTypeService(st.types)

	if strings.TrimSpace(brokers) != "" {
		// Each replica consumes every schedule change so its weekly cache stays fresh.
		eventConsumer := consumer.New(logger, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service+"-"+uuid.NewString()),
			Topic:   outbox.TopicScheduleChanged,
		}, consumer.ScheduleChanged(sched.Resolver(), logger))
		go eventConsumer.Run(ctx)
		st.checks = append(st.checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	if err := startGrpcServer(ctx, logger, sched); err != nil {
		logger.Error("grpc server init failed", "err", err)
		panic(err)
	}

	var rateLimitMW httpx.Middleware
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "clinic-rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		st.checks = append(st.checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	guard := handlers.AdminGuard{JWTSecret: config.String("JWT_SECRET", "")}
	mux := runtime.NewBaseMuxWithReady(st.checks...)
	handlers.Register(mux,
		handlers.NewScheduleHandler(sched, guard, logger),
		handlers.NewAppointmentHandler(bookingSvc, sched, logger),
		handlers.NewTypeHandler(typeSvc, guard, logger),
	)

	handler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id,X-Role"),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 10*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "clinic")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
