package storage

import (
	"context"
	"fmt"

	"reception-dedup/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Rows ist die Teilmenge von *sql.Rows, die die Projektion benötigt.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// OpenPostgres öffnet die Verbindung zur Empfangsdatenbank.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	return db, nil
}

// GormStore führt Roh-SQL über gorm aus.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore erstellt einen Store auf Basis einer gorm-Verbindung.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Query führt eine lesende Abfrage aus. Der Aufrufer muss Rows schließen.
func (s *GormStore) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.DB.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec führt eine einzelne ändernde Anweisung aus und liefert die Zahl der betroffenen Zeilen.
func (s *GormStore) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res := s.DB.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

// Ping prüft die Erreichbarkeit der Datenbank.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
