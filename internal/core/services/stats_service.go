package services

import (
	"context"
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsService aggregates platform-wide numbers for the admin dashboard
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// CaseCounts holds case counts by status
type CaseCounts struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Active      int64 `json:"active"`
	FullyFunded int64 `json:"fully_funded"`
	Completed   int64 `json:"completed"`
	Cancelled   int64 `json:"cancelled"`
}

// Statistics is the admin statistics payload
type Statistics struct {
	Cases            CaseCounts                 `json:"cases"`
	TotalDonors      int64                      `json:"total_donors"`
	TotalPatients    int64                      `json:"total_patients"`
	TotalDonations   int64                      `json:"total_donations"`
	TotalRaised      decimal.Decimal            `json:"total_raised"`
	DonatedThisMonth decimal.Decimal            `json:"donated_this_month"`
	RecentDonations  []*models.DonationResponse `json:"recent_donations"`
	TopCases         []*models.CaseResponse     `json:"top_cases"`
}

// Statistics computes the admin dashboard numbers
func (s *StatsService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.TreatmentCase{}).Count(&stats.Cases.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.CaseStatus
		Count  int64
	}{}
	if err := db.Model(&models.TreatmentCase{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.CaseStatusPending:
			stats.Cases.Pending = sc.Count
		case domain.CaseStatusActive:
			stats.Cases.Active = sc.Count
		case domain.CaseStatusFullyFunded:
			stats.Cases.FullyFunded = sc.Count
		case domain.CaseStatusCompleted:
			stats.Cases.Completed = sc.Count
		case domain.CaseStatusCancelled:
			stats.Cases.Cancelled = sc.Count
		}
	}

	if err := db.Model(&models.Donor{}).Count(&stats.TotalDonors).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Patient{}).Count(&stats.TotalPatients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Donation{}).
		Where("status = ?", domain.DonationCompleted).
		Count(&stats.TotalDonations).Error; err != nil {
		return nil, err
	}

	var totalRaised decimal.NullDecimal
	if err := db.Model(&models.Donation{}).
		Where("status = ?", domain.DonationCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRaised).Error; err != nil {
		return nil, err
	}
	stats.TotalRaised = totalRaised.Decimal

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthTotal decimal.NullDecimal
	if err := db.Model(&models.Donation{}).
		Where("status = ? AND donation_date >= ?", domain.DonationCompleted, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthTotal).Error; err != nil {
		return nil, err
	}
	stats.DonatedThisMonth = monthTotal.Decimal

	var recent []models.Donation
	if err := db.
		Preload("Donor").
		Order("donation_date DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	stats.RecentDonations = make([]*models.DonationResponse, len(recent))
	for i := range recent {
		stats.RecentDonations[i] = recent[i].ToResponse()
	}

	var top []models.TreatmentCase
	if err := db.
		Preload("Patient").
		Where("status IN ?", []domain.CaseStatus{domain.CaseStatusActive, domain.CaseStatusFullyFunded}).
		Order("amount_raised DESC").
		Limit(5).
		Find(&top).Error; err != nil {
		return nil, err
	}
	stats.TopCases = make([]*models.CaseResponse, len(top))
	for i := range top {
		stats.TopCases[i] = top[i].ToResponse()
	}

	return stats, nil
}
