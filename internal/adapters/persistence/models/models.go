package models

import (
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Directory Tables
// ============================================================

// Patient represents patients table
type Patient struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Age            int            `gorm:"not null" json:"age"`
	Gender         string         `gorm:"size:20" json:"gender"`
	Email          string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone          string         `gorm:"size:30" json:"phone"`
	MedicalHistory string         `gorm:"type:text" json:"medical_history"`
	Language       string         `gorm:"size:30;default:'Arabic'" json:"language"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// Donor represents donors table. Donors are also the auth principals:
// admins are donors with Role ADMIN.
type Donor struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"size:100;not null" json:"name"`
	Email     string           `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string           `gorm:"size:255;not null" json:"-"`
	Phone     string           `gorm:"size:30" json:"phone"`
	Address   string           `gorm:"type:text" json:"address"`
	Role      string           `gorm:"size:20;default:'DONOR'" json:"role"`
	DonorType domain.DonorType `gorm:"size:30;default:'private_donor'" json:"donor_type"`
	IsActive  bool             `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Donor) TableName() string {
	return "donors"
}

// DonorResponse DTO
type DonorResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Address   string           `json:"address,omitempty"`
	Role      string           `json:"role"`
	DonorType domain.DonorType `json:"donor_type"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
}

func (d *Donor) ToResponse() *DonorResponse {
	return &DonorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		Role:      d.Role,
		DonorType: d.DonorType,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	DonorID   uint       `gorm:"index;not null" json:"donor_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Donor     Donor      `gorm:"foreignKey:DonorID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Ledger Tables
// ============================================================

// TreatmentCase represents treatment_cases table.
// AmountRaised and AmountNeeded are mutated only inside the donation
// service's transaction; amount_raised + amount_needed == total_cost holds
// after every committed write.
type TreatmentCase struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	PatientID     uint                 `gorm:"not null;index" json:"patient_id"`
	Title         string               `gorm:"size:200;not null" json:"title"`
	Description   string               `gorm:"type:text;not null" json:"description"`
	TreatmentType domain.TreatmentType `gorm:"size:30;not null" json:"treatment_type"`
	TotalCost     decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"total_cost"`
	AmountRaised  decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0" json:"amount_raised"`
	AmountNeeded  decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"amount_needed"`
	Status        domain.CaseStatus    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	UrgencyLevel  domain.UrgencyLevel  `gorm:"size:20;default:'medium'" json:"urgency_level"`
	Story         string               `gorm:"type:text" json:"story"`
	IsVerified    bool                 `gorm:"default:false" json:"is_verified"`
	VerifiedAt    *time.Time           `json:"verified_at"`
	// Ordered lists, newest first
	PatientFeedback datatypes.JSON `json:"patient_feedback"`
	RecoveryUpdates datatypes.JSON `json:"recovery_updates"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Patient   *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Donations []Donation `gorm:"foreignKey:TreatmentCaseID" json:"donations,omitempty"`
	Invoices  []Invoice  `gorm:"foreignKey:TreatmentCaseID" json:"invoices,omitempty"`
}

func (TreatmentCase) TableName() string {
	return "treatment_cases"
}

// RecoveryUpdate is one entry of TreatmentCase.RecoveryUpdates
type RecoveryUpdate struct {
	ID     int64    `json:"id"`
	Date   string   `json:"date"`
	Update string   `json:"update"`
	Photos []string `json:"photos"`
}

// FeedbackEntry is one entry of TreatmentCase.PatientFeedback
type FeedbackEntry struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CaseResponse DTO
type CaseResponse struct {
	ID            uint                 `json:"id"`
	PatientID     uint                 `json:"patient_id"`
	PatientName   string               `json:"patient_name,omitempty"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	TreatmentType domain.TreatmentType `json:"treatment_type"`
	TotalCost     decimal.Decimal      `json:"total_cost"`
	AmountRaised  decimal.Decimal      `json:"amount_raised"`
	AmountNeeded  decimal.Decimal      `json:"amount_needed"`
	Status        domain.CaseStatus    `json:"status"`
	UrgencyLevel  domain.UrgencyLevel  `json:"urgency_level"`
	Story         string               `json:"story,omitempty"`
	IsVerified    bool                 `json:"is_verified"`
	VerifiedAt    *time.Time           `json:"verified_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func (tc *TreatmentCase) ToResponse() *CaseResponse {
	resp := &CaseResponse{
		ID:            tc.ID,
		PatientID:     tc.PatientID,
		Title:         tc.Title,
		Description:   tc.Description,
		TreatmentType: tc.TreatmentType,
		TotalCost:     tc.TotalCost,
		AmountRaised:  tc.AmountRaised,
		AmountNeeded:  tc.AmountNeeded,
		Status:        tc.Status,
		UrgencyLevel:  tc.UrgencyLevel,
		Story:         tc.Story,
		IsVerified:    tc.IsVerified,
		VerifiedAt:    tc.VerifiedAt,
		CreatedAt:     tc.CreatedAt,
	}
	if tc.Patient != nil {
		resp.PatientName = tc.Patient.Name
	}
	return resp
}

// Donation represents donations table. Rows are immutable after creation
// except for payment-callback status changes; the amount has been credited
// to the case exactly once when status is completed.
type Donation struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	DonorID         uint                  `gorm:"not null;index" json:"donor_id"`
	TreatmentCaseID uint                  `gorm:"not null;index" json:"treatment_case_id"`
	Amount          decimal.Decimal       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status          domain.DonationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsAnonymous     bool                  `gorm:"default:false" json:"is_anonymous"`
	Message         string                `gorm:"type:text" json:"message"`
	PaymentMethod   string                `gorm:"size:30" json:"payment_method"`
	TransactionID   *string               `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	DonationDate    time.Time             `gorm:"autoCreateTime" json:"donation_date"`

	// Relations
	Donor         *Donor         `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	TreatmentCase *TreatmentCase `gorm:"foreignKey:TreatmentCaseID" json:"treatment_case,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}

// DonationResponse DTO. DonorName is already masked for anonymous donations.
type DonationResponse struct {
	ID              uint                  `json:"id"`
	TreatmentCaseID uint                  `json:"treatment_case_id"`
	Amount          decimal.Decimal       `json:"amount"`
	Status          domain.DonationStatus `json:"status"`
	DonorName       string                `json:"donor_name"`
	Message         string                `json:"message,omitempty"`
	DonationDate    time.Time             `json:"donation_date"`
}

// AnonymousDonorName replaces the donor name when the donation's anonymity
// flag is set. The flag is fixed at donation creation.
const AnonymousDonorName = "Anonymous Donor"

func (d *Donation) ToResponse() *DonationResponse {
	resp := &DonationResponse{
		ID:              d.ID,
		TreatmentCaseID: d.TreatmentCaseID,
		Amount:          d.Amount,
		Status:          d.Status,
		DonorName:       AnonymousDonorName,
		Message:         d.Message,
		DonationDate:    d.DonationDate,
	}
	if !d.IsAnonymous && d.Donor != nil {
		resp.DonorName = d.Donor.Name
	}
	return resp
}

// Invoice represents invoices table. Invoices are audit-only: they never
// mutate case totals. Invoiced totals may exceed the raised amount.
type Invoice struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	TreatmentCaseID uint                 `gorm:"not null;index" json:"treatment_case_id"`
	DonationID      *uint                `json:"donation_id"`
	InvoiceNumber   string               `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	Amount          decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description     string               `gorm:"type:text;not null" json:"description"`
	InvoiceType     domain.InvoiceType   `gorm:"size:20;not null" json:"invoice_type"`
	ReceiptURL      string               `gorm:"size:255" json:"receipt_url"`
	Status          domain.InvoiceStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	DateIssued      time.Time            `gorm:"autoCreateTime" json:"date_issued"`
	PaidAt          *time.Time           `json:"paid_at"`

	// Relations
	TreatmentCase *TreatmentCase `gorm:"foreignKey:TreatmentCaseID" json:"treatment_case,omitempty"`
	Donation      *Donation      `gorm:"foreignKey:DonationID" json:"donation,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Patient{},
		&Donor{},
		&RefreshToken{},
		&TreatmentCase{},
		&Donation{},
		&Invoice{},
	)
}
