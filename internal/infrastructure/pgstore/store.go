// Package pgstore persists the marketplace aggregates in PostgreSQL via gorm.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func Connect(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened handle.
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&profileModel{},
		&productModel{},
		&orderModel{},
		&paymentModel{},
		&reviewModel{},
	)
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{db: s.DB} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{db: s.DB} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{db: s.DB} }
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{db: s.DB} }
func (s *Store) Reviews() *ReviewRepository   { return &ReviewRepository{db: s.DB} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
