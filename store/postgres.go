package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// snapshotRow maps one collection snapshot to a database row. The snapshot
// body keeps the same JSON layout as the file adapter.
type snapshotRow struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      []byte
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "snapshots" }

// PostgresSnapshotter persists collection snapshots in a snapshots table.
type PostgresSnapshotter struct {
	db *gorm.DB
}

// NewPostgresSnapshotter connects with retries so the service survives the
// database coming up after it in a compose environment.
func NewPostgresSnapshotter(dsn string) (*PostgresSnapshotter, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	const maxRetries = 10
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
			PrepareStmt: true,
		})
		if err == nil {
			sqlDB, derr := db.DB()
			if derr != nil {
				err = derr
			} else if err = sqlDB.Ping(); err == nil {
				sqlDB.SetMaxIdleConns(10)
				sqlDB.SetMaxOpenConns(100)
				sqlDB.SetConnMaxLifetime(time.Hour)
				if err = db.AutoMigrate(&snapshotRow{}); err != nil {
					return nil, err
				}
				return &PostgresSnapshotter{db: db}, nil
			}
		}
		time.Sleep(2 * time.Second)
	}
	return nil, err
}

func (p *PostgresSnapshotter) Load(name string, v any) error {
	var row snapshotRow
	if err := p.db.First(&row, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSnapshot
		}
		return err
	}
	return json.Unmarshal(row.Data, v)
}

func (p *PostgresSnapshotter) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	row := snapshotRow{Name: name, Data: data, UpdatedAt: time.Now().UTC()}
	return p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}
