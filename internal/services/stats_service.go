package services

import (
	"time"

	"gorm.io/gorm"

	"bookstore/internal/repositories"
)

// StatsSummary is the admin overview aggregate.
type StatsSummary struct {
	RevenueCents int64 `json:"revenue_cents"`
	Users        int64 `json:"users"`
}

// StatsService exposes the admin-only sales aggregates.
type StatsService interface {
	SalesByDay(days int) ([]repositories.DailySales, error)
	TopBooks(limit int) ([]repositories.BookSales, error)
	Summary() (*StatsSummary, error)
}

type statsService struct {
	db        *gorm.DB
	statsRepo repositories.StatsRepository
}

func NewStatsService(db *gorm.DB, statsRepo repositories.StatsRepository) StatsService {
	return &statsService{db: db, statsRepo: statsRepo}
}

func (s *statsService) SalesByDay(days int) ([]repositories.DailySales, error) {
	if days < 1 {
		days = 1
	}
	since := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))
	rows, err := s.statsRepo.SalesByDay(nil, since)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repositories.DailySales{}
	}
	return rows, nil
}

func (s *statsService) TopBooks(limit int) ([]repositories.BookSales, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := s.statsRepo.TopBooks(nil, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repositories.BookSales{}
	}
	return rows, nil
}

func (s *statsService) Summary() (*StatsSummary, error) {
	revenue, err := s.statsRepo.TotalRevenueCents(nil)
	if err != nil {
		return nil, err
	}
	users, err := s.statsRepo.TotalUsers(nil)
	if err != nil {
		return nil, err
	}
	return &StatsSummary{RevenueCents: revenue, Users: users}, nil
}
