package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot 一個 key 一筆
type Snapshot struct {
	Key       string `gorm:"column:snapshot_key;primaryKey;size:191"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (Snapshot) TableName() string {
	return "storefront_snapshots"
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

type DBBackend struct {
	db *gorm.DB
}

var _ Backend = (*DBBackend)(nil)

func NewDBBackend(db *gorm.DB) (*DBBackend, error) {
	if db == nil {
		panic("db backend dependency db is nil")
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &DBBackend{db: db}, nil
}

func (d *DBBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var snap Snapshot
	err := d.db.WithContext(ctx).Where("snapshot_key = ?", key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap.Data, nil
}

// Save upsert
func (d *DBBackend) Save(ctx context.Context, key string, data []byte) error {
	snap := Snapshot{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snap).Error
}

func (d *DBBackend) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
