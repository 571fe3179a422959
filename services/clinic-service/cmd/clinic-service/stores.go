package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/libs/config"
	"github.com/tammy-rb/siri-cosmetics-server/libs/db"
	"github.com/tammy-rb/siri-cosmetics-server/libs/runtime"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/booking"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/storage"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/storage/memstore"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/migrations"
)

type stores struct {
	schedule scheduling.ScheduleStore
	appts    booking.AppointmentStore
	types    booking.AppointmentTypeStore
	checks   []runtime.ReadyCheck

	// Set only for the postgres driver.
	pool   *db.Pool
	outbox *outbox.Repository
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// openStores selects repositories by STORAGE_DRIVER.
func openStores(ctx context.Context, logger *slog.Logger) (*stores, error) {
	switch driver := config.String("STORAGE_DRIVER", "postgres"); driver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		mem := memstore.New()
		return &stores{schedule: mem, appts: mem, types: mem}, nil
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return nil, err
		}
		pool, err := db.OpenWithConfig(ctx, dbURL, db.PoolConfig{
			MaxConns:        int32(config.Int("DB_MAX_CONNS", 10)),
			MinConns:        int32(config.Int("DB_MIN_CONNS", 1)),
			MaxConnLifetime: config.Duration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: config.Duration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		})
		if err != nil {
			return nil, fmt.Errorf("db connection failed: %w", err)
		}
		if config.Bool("MIGRATE_ON_START", false) {
			version, err := db.Migrate(ctx, pool, migrations.FS, ".")
			if err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("migrations applied", "version", version)
		}
		outboxRepo := outbox.NewRepository(pool)
		return &stores{
			schedule: storage.NewScheduleRepository(pool, outboxRepo),
			appts:    storage.NewAppointmentRepository(pool, outboxRepo),
			types:    storage.NewAppointmentTypeRepository(pool),
			checks:   []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}},
			pool:     pool,
			outbox:   outboxRepo,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want postgres or memory)", driver)
	}
}
