package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"gearbox/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the catalog store connection
type Service struct {
	db *sql.DB
}

// New opens a connection pool to the catalog store
func New(cfg config.DatabaseConfig) (*Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Service{db: db}, nil
}

// DB exposes the underlying pool
func (s *Service) DB() *sql.DB {
	return s.db
}

// Health pings the store and reports pool statistics
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

// Close shuts the pool down
func (s *Service) Close() error {
	return s.db.Close()
}
