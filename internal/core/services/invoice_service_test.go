package services

import (
	"context"
	"testing"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInvoiceService(db *gorm.DB) *InvoiceService {
	return NewInvoiceService(
		repositories.NewCaseRepository(db),
		repositories.NewInvoiceRepository(db),
		repositories.NewDonationRepository(db),
	)
}

func TestAddInvoice(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("500"))

	svc := newInvoiceService(db)

	invoice, err := svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
		Amount:      d("120.75"),
		Description: "MRI scan",
		InvoiceType: domain.InvoiceTests,
	})
	require.NoError(t, err)
	require.NotEmpty(t, invoice.InvoiceNumber)
	require.Equal(t, domain.InvoicePending, invoice.Status)
	require.True(t, d("120.75").Equal(invoice.Amount))

	// invoices never touch the case's funding totals
	var got models.TreatmentCase
	require.NoError(t, db.First(&got, tc.ID).Error)
	require.True(t, d("500").Equal(got.AmountRaised))
	require.True(t, d("500").Equal(got.AmountNeeded))
}

func TestAddInvoiceDefaultsTypeToOther(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newInvoiceService(db)

	invoice, err := svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
		Amount:      d("30"),
		Description: "Transport to hospital",
	})
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceOther, invoice.InvoiceType)
}

func TestAddInvoiceValidation(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newInvoiceService(db)

	_, err := svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
		Amount:      d("0"),
		Description: "Free sample",
	})
	require.ErrorIs(t, err, ErrInvoiceAmount)

	_, err = svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
		Amount:      d("10"),
		Description: "Mystery",
		InvoiceType: "entertainment",
	})
	require.ErrorIs(t, err, ErrInvalidInvoiceType)

	_, err = svc.Add(context.Background(), 999, &AddInvoiceInput{
		Amount:      d("10"),
		Description: "Orphan invoice",
	})
	require.ErrorIs(t, err, ErrCaseNotFound)
}

func TestAddInvoiceMayExceedRaisedAmount(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("100"))

	svc := newInvoiceService(db)

	// invoicing is audit-only; spend above the raised amount is recorded as-is
	invoice, err := svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
		Amount:      d("800"),
		Description: "Emergency surgery deposit",
		InvoiceType: domain.InvoiceSurgery,
	})
	require.NoError(t, err)
	require.True(t, d("800").Equal(invoice.Amount))
}

func TestAddInvoiceLinkedDonationMustMatchCase(t *testing.T) {
	db := newTestDB(t)
	donor := seedDonor(t, db, "alice@example.com")
	patient := seedPatient(t, db, "patient1@example.com")
	tc1 := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))
	tc2 := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("500"), d("0"))

	donationSvc := newDonationService(db)
	out, err := donationSvc.Record(context.Background(), &RecordDonationInput{
		DonorID:         donor.ID,
		TreatmentCaseID: tc1.ID,
		Amount:          d("50"),
	})
	require.NoError(t, err)

	svc := newInvoiceService(db)

	// linking to a donation of another case is rejected
	_, err = svc.Add(context.Background(), tc2.ID, &AddInvoiceInput{
		Amount:      d("40"),
		Description: "Medication",
		DonationID:  &out.Donation.ID,
	})
	require.ErrorIs(t, err, ErrDonationCaseMismatch)

	// linking within the same case works
	invoice, err := svc.Add(context.Background(), tc1.ID, &AddInvoiceInput{
		Amount:      d("40"),
		Description: "Medication",
		DonationID:  &out.Donation.ID,
	})
	require.NoError(t, err)
	require.Equal(t, out.Donation.ID, *invoice.DonationID)
}

func TestListInvoicesByCase(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, "patient1@example.com")
	tc := seedCase(t, db, patient.ID, domain.CaseStatusActive, d("1000"), d("0"))

	svc := newInvoiceService(db)

	for _, desc := range []string{"First", "Second", "Third"} {
		_, err := svc.Add(context.Background(), tc.ID, &AddInvoiceInput{
			Amount:      d("10"),
			Description: desc,
		})
		require.NoError(t, err)
	}

	invoices, err := svc.ListByCase(context.Background(), tc.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	_, err = svc.ListByCase(context.Background(), 999)
	require.ErrorIs(t, err, ErrCaseNotFound)
}
