package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenPostgres opens a gorm handle on dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// TileRecord is one row of the tiles table.
type TileRecord struct {
	X           float64 `gorm:"primaryKey;autoIncrement:false"`
	Y           float64 `gorm:"primaryKey;autoIncrement:false"`
	Fingerprint int64   `gorm:"primaryKey;autoIncrement:false"`
	Document    []byte  `gorm:"type:bytea;not null"`
	UpdatedAt   time.Time
}

func (TileRecord) TableName() string { return "wipmap_tiles" }

// GormStore keeps tile documents in a relational table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tiles table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&TileRecord{}); err != nil {
		return fmt.Errorf("migrate tiles: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var row TileRecord
	err := s.db.WithContext(ctx).
		Where("x = ? AND y = ? AND fingerprint = ?", key.X, key.Y, int64(key.Fingerprint)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load tile %s: %w", key, err)
	}
	return row.Document, true, nil
}

func (s *GormStore) Put(ctx context.Context, key Key, doc []byte) error {
	row := TileRecord{
		X:           key.X,
		Y:           key.Y,
		Fingerprint: int64(key.Fingerprint),
		Document:    doc,
		UpdatedAt:   time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "x"}, {Name: "y"}, {Name: "fingerprint"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save tile %s: %w", key, err)
	}
	return nil
}
