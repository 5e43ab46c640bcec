package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"library/config"
	"library/log"
)

const readinessInterval = time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Open connects to the configured database and waits until it answers pings
// or cfg.ConnectTimeout elapses.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log.Root(), gormlogger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database, error: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	waitCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err = WaitForDatabase(waitCtx, sqlDB, readinessInterval); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// WaitForDatabase pings p every interval until it succeeds or ctx is done.
func WaitForDatabase(ctx context.Context, p Pinger, interval time.Duration) error {
	logger := log.GetLogger(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if lastErr = p.PingContext(ctx); lastErr == nil {
			if attempt > 1 {
				logger.Infof("database ready after %d attempts", attempt)
			}
			return nil
		}
		logger.WithError(lastErr).Warnf("database not ready (attempt %d)", attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready before timeout: %w", errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}

// Ping checks that the database behind db is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
