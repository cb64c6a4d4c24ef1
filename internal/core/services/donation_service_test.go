package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordDonationCreditsCase(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	out, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("250.50"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.CaseStatusActive, out.CaseStatus)
	require.True(t, d("749.50").Equal(out.RemainingNeeded))
	require.Equal(t, domain.DonationCompleted, out.Donation.Status)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("250.50").Equal(got.AmountRaised))

	// conservation: raised + needed == total cost
	require.True(t, got.TotalCost.Equal(got.AmountRaised.Add(got.AmountNeeded)))
}

func TestRecordDonationRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	for _, amount := range []string{"0", "-10"} {
		_, err := svc.Record(context.Background(), &RecordDonationInput{
			DonorID:         donor.ID,
			TreatmentCaseID: tc.ID,
			Amount:          d(amount),
		})
		require.ErrorIs(t, err, ErrInvalidAmount)
	}

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRecordDonationRejectsClosedCases(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")

	svc := newDonationService(db)

	for _, status := range []domain.CaseStatus{
		domain.CaseStatusFullyFunded,
		domain.CaseStatusCompleted,
		domain.CaseStatusCancelled,
	} {
		tc := seedCase(t, db, patient.ID, status, d("1000"), d("1000"))

		_, err := svc.Record(context.Background(), &RecordDonationInput{
			DonorID:         donor.ID,
			TreatmentCaseID: tc.ID,
			Amount:          d("50"),
		})
		require.ErrorIs(t, err, ErrCaseClosed, "status %s must reject donations", status)

		var got models.TreatmentCase
		require.NoError(t, db.First(&got, tc.ID).Error)
		require.True(t, d("1000").Equal(got.AmountRaised), "totals must be untouched")
	}
}

func TestRecordDonationExactBoundary(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("800"))

	svc := newDonationService(db)

	// exactly reaching the total flips to fully funded with zero remaining
	out, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("200"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.CaseStatusFullyFunded, out.CaseStatus)
	require.True(t, decimal.Zero.Equal(out.RemainingNeeded))

	// the now fully funded case rejects further donations
	_, err = svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("50"),
	})
	require.ErrorIs(t, err, ErrCaseClosed)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("1000").Equal(got.AmountRaised))
}

func TestRecordDonationOverFunding(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("900"))

	svc := newDonationService(db)

	// a donation overshooting the total is accepted in full
	out, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("300"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.CaseStatusFullyFunded, out.CaseStatus)
	require.True(t, decimal.Zero.Equal(out.RemainingNeeded))

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("1200").Equal(got.AmountRaised))
	require.True(t, decimal.Zero.Equal(got.AmountNeeded))
}

func TestRecordDonationUnknownCaseAndDonor(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")

	svc := newDonationService(db)

	_, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: 4242,
		Amount:          d("10"),
	})
	require.ErrorIs(t, err, ErrCaseNotFound)

	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	_, err = svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         9999,
		TreatmentCaseID: tc.ID,
		Amount:          d("10"),
	})
	require.ErrorIs(t, err, ErrDonorNotFound)
}

func TestRecordDonationRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("100"))

	// force the case-total update to fail after the donation insert
	fail := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").
		Register("test:force_case_update_failure", func(d *gorm.DB) {
			if fail && d.Statement.Table == "treatment_cases" {
				d.AddError(errors.New("forced update failure"))
			}
		}))

	svc := newDonationService(db)

	fail = true
	_, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("50"),
	})
	fail = false
	require.Error(t, err)

	// neither write survived
	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("100").Equal(got.AmountRaised))
	require.True(t, d("900").Equal(got.AmountNeeded))
}

func TestRecordDonationConcurrentSumsExactly(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Record(context.Background(), &RecordDonationInput{
				DonorID:         donor.ID,
				TreatmentCaseID: tc.ID,
				Amount:          d("100"),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("1000").Equal(got.AmountRaised), "raised %s", got.AmountRaised)
	require.True(t, decimal.Zero.Equal(got.AmountNeeded))
	require.Equal(t, domain.CaseStatusFullyFunded, got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Where("treatment_case_id = ?", tc.ID).Count(&count).Error)
	require.Equal(t, int64(workers), count)
}

func TestRecordDonationIdempotentReplay(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	input := &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("100"),
		TransactionID:   "stripe_tx_001",
	}

	first, err := svc.Record(context.Background(), input)
	require.NoError(t, err)
	require.False(t, first.Replayed)

	// replaying the same external transaction credits nothing
	second, err := svc.Record(context.Background(), input)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Donation.ID, second.Donation.ID)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("100").Equal(got.AmountRaised))

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// a different transaction id is a new donation
	third, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("100"),
		TransactionID:   "stripe_tx_002",
	})
	require.NoError(t, err)
	require.False(t, third.Replayed)
}

func TestRecordDonationConcurrentSameTransactionID(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	// retried payment callbacks race each other with the same external id;
	// the losers must get the replay response, not a unique-index error
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	outs := make([]*RecordDonationOutput, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = svc.Record(context.Background(), &RecordDonationInput{
				DonorID:         donor.ID,
				TreatmentCaseID: tc.ID,
				Amount:          d("100"),
				TransactionID:   "stripe_tx_retry",
			})
		}(i)
	}
	wg.Wait()

	recorded := 0
	for i := range errs {
		require.NoError(t, errs[i], "worker %d", i)
		require.Equal(t, outs[0].Donation.ID, outs[i].Donation.ID)
		if !outs[i].Replayed {
			recorded++
		}
	}
	require.Equal(t, 1, recorded)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("100").Equal(got.AmountRaised), "credited exactly once, got %s", got.AmountRaised)

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestFundingScenario(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")

	// case with total cost 1000, already raised 800
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("800"))

	svc := newDonationService(db)

	// a donation of 200 lands the case exactly at its goal
	out, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("200"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.CaseStatusFullyFunded, out.CaseStatus)
	require.True(t, decimal.Zero.Equal(out.RemainingNeeded))

	// a later donation of 50 is rejected and changes nothing
	_, err = svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("50"),
	})
	require.ErrorIs(t, err, ErrCaseClosed)

	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("1000").Equal(got.AmountRaised))
	require.Equal(t, domain.CaseStatusFullyFunded, got.Status)
}

func TestListByCaseMasksAnonymousDonors(t *testing.T) {
	db := newTestDB(t)
	alice := seedDonor(t, db, "alice@example.com")
	bob := seedDonor(t, db, "bob@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newDonationService(db)

	_, err := svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         alice.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("100"),
	})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), &RecordDonationInput{
		DonorID:         bob.ID,
		TreatmentCaseID: tc.ID,
		Amount:          d("60"),
		IsAnonymous:     true,
	})
	require.NoError(t, err)

	donations, err := svc.ListByCase(context.Background(), tc.ID, 0)
	require.NoError(t, err)
	require.Len(t, donations, 2)

	names := map[string]bool{}
	for _, dn := range donations {
		names[dn.DonorName] = true
	}
	require.True(t, names[alice.Name])
	require.True(t, names[models.AnonymousDonorName])
	require.False(t, names[bob.Name], "anonymous donor name must never leak")

	// the anonymous donor viewing the feed sees their own donation unmasked
	donations, err = svc.ListByCase(context.Background(), tc.ID, bob.ID)
	require.NoError(t, err)
	names = map[string]bool{}
	for _, dn := range donations {
		names[dn.DonorName] = true
	}
	require.True(t, names[bob.Name])
	require.False(t, names[models.AnonymousDonorName])

	// another signed-in donor still sees the mask
	donations, err = svc.ListByCase(context.Background(), tc.ID, alice.ID)
	require.NoError(t, err)
	names = map[string]bool{}
	for _, dn := range donations {
		names[dn.DonorName] = true
	}
	require.True(t, names[models.AnonymousDonorName])
	require.False(t, names[bob.Name])
}

func TestListByCaseUnknownCase(t *testing.T) {
	db := newTestDB(t)
	svc := newDonationService(db)

	_, err := svc.ListByCase(context.Background(), 777, 0)
	require.ErrorIs(t, err, ErrCaseNotFound)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal literal %q: %v", s, err))
	}
	return v
}
