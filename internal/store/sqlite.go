package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/domain"
)

// sessionRow is the single-row assignment record. A fixed primary key keeps
// at most one assignment per device.
type sessionRow struct {
	ID        int64 `gorm:"primaryKey"`
	RouteID   int64
	RouteName string
	UpdatedAt time.Time
}

func (sessionRow) TableName() string { return "session" }

// completionRow is one completed point of the currently assigned route.
type completionRow struct {
	PointID     int64 `gorm:"primaryKey"`
	PhotoRef    string
	CompletedAt time.Time
}

func (completionRow) TableName() string { return "completions" }

const sessionKey = 1

// SQLite is the durable Store implementation backed by a device-scoped
// sqlite file.
type SQLite struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the local state database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state db %q: %w", path, err)
	}
	if err := db.AutoMigrate(&sessionRow{}, &completionRow{}); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &SQLite{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrPersistence, op, err)
}

// Assign records the local assignment, overwriting any prior one.
func (s *SQLite) Assign(ctx context.Context, routeID int64, routeName string) error {
	row := sessionRow{ID: sessionKey, RouteID: routeID, RouteName: routeName, UpdatedAt: s.now()}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return persistence("assign", err)
	}
	return nil
}

// Assignment returns the current assignment, or nil when none exists.
func (s *SQLite) Assignment(ctx context.Context) (*domain.Assignment, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, sessionKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("read assignment", err)
	}
	return &domain.Assignment{RouteID: row.RouteID, RouteName: row.RouteName}, nil
}

// CompletePoint marks a point done. Re-completing keeps membership intact and
// overwrites the photo reference only when a new one is given.
func (s *SQLite) CompletePoint(ctx context.Context, pointID int64, photoRef string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing completionRow
		err := tx.First(&existing, pointID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&completionRow{
				PointID:     pointID,
				PhotoRef:    photoRef,
				CompletedAt: s.now(),
			}).Error
		case err != nil:
			return err
		case photoRef != "":
			existing.PhotoRef = photoRef
			return tx.Save(&existing).Error
		default:
			return nil
		}
	})
	if err != nil {
		return persistence("complete point", err)
	}
	return nil
}

// IsCompleted reports whether the point is marked done.
func (s *SQLite) IsCompleted(ctx context.Context, pointID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&completionRow{}).Where("point_id = ?", pointID).Count(&n).Error
	if err != nil {
		return false, persistence("read completion", err)
	}
	return n > 0, nil
}

// CompletedCount returns the number of points marked done.
func (s *SQLite) CompletedCount(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&completionRow{}).Count(&n).Error; err != nil {
		return 0, persistence("count completions", err)
	}
	return int(n), nil
}

// AllCompleted reports whether at least total points are marked done.
func (s *SQLite) AllCompleted(ctx context.Context, total int) (bool, error) {
	n, err := s.CompletedCount(ctx)
	if err != nil {
		return false, err
	}
	return n >= total, nil
}

// Photo returns the stored photo reference for a point, or "" when none.
func (s *SQLite) Photo(ctx context.Context, pointID int64) (string, error) {
	var row completionRow
	err := s.db.WithContext(ctx).First(&row, pointID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", persistence("read photo", err)
	}
	return row.PhotoRef, nil
}

// Finish clears the assignment and the completion set in one transaction, so
// a crash can never leave one cleared without the other.
func (s *SQLite) Finish(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&completionRow{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&sessionRow{}).Error
	})
	if err != nil {
		return persistence("finish", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ Store = (*SQLite)(nil)
