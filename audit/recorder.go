// Package audit keeps a best-effort MySQL trail of every processed
// recognition event. Audit failures never fail the request that caused
// them.
package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/model"
)

type Recorder struct {
	db *gorm.DB
}

// Open connects the audit database and ensures the schema exists.
// dsn is a standard MySQL DSN including the schema name.
func Open(dsn string, maxConnections int) (*Recorder, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConnections)
	sqlDB.SetMaxIdleConns(maxConnections)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&model.EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

func (r *Recorder) Record(ctx context.Context, entry core.EventLogEntry) error {
	row := model.EventRecord{
		ID:            entry.EventID,
		Kind:          string(entry.Kind),
		RawKey:        entry.RawKey,
		NormalizedKey: entry.NormalizedKey,
		Outcome:       string(entry.Outcome),
		IdentityID:    entry.IdentityID,
		Name:          entry.Name,
		Confidence:    entry.Confidence,
		OccurredAt:    entry.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Close releases the underlying pool.
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
