package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database to avoid cross-test
// interference. A single connection keeps sqlite's writer serialized the
// way MySQL's row locks do in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedDonor(t *testing.T, db *gorm.DB, email string) *models.Donor {
	t.Helper()
	donor := &models.Donor{
		Name:      "Donor " + strings.SplitN(email, "@", 2)[0],
		Email:     email,
		Password:  "not-a-real-hash",
		Role:      "DONOR",
		DonorType: domain.DonorPrivate,
		IsActive:  true,
	}
	require.NoError(t, db.Create(donor).Error)
	return donor
}

func seedPatient(t *testing.T, db *gorm.DB, email string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		Name:  "Test Patient",
		Age:   34,
		Email: email,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func seedCase(t *testing.T, db *gorm.DB, patientID uint, status domain.CaseStatus, totalCost, raised decimal.Decimal) *models.TreatmentCase {
	t.Helper()
	tc := &models.TreatmentCase{
		PatientID:     patientID,
		Title:         "Knee surgery",
		Description:   "Reconstructive knee surgery",
		TreatmentType: domain.TreatmentSurgery,
		TotalCost:     totalCost,
		AmountRaised:  raised,
		AmountNeeded:  domain.RemainingNeeded(totalCost, raised),
		Status:        status,
		UrgencyLevel:  domain.UrgencyHigh,
		IsVerified:    status == domain.CaseStatusActive,
	}
	require.NoError(t, db.Create(tc).Error)
	return tc
}

func newDonationService(db *gorm.DB) *DonationService {
	return NewDonationService(
		db,
		repositories.NewCaseRepository(db),
		repositories.NewDonationRepository(db),
		repositories.NewDonorRepository(db),
	)
}
