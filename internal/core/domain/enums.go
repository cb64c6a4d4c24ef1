package domain

// TreatmentType categorizes what a case is raising money for
type TreatmentType string

const (
	TreatmentSurgery         TreatmentType = "surgery"
	TreatmentCancerTreatment TreatmentType = "cancer_treatment"
	TreatmentDialysis        TreatmentType = "dialysis"
	TreatmentRehabilitation  TreatmentType = "rehabilitation"
)

func (t TreatmentType) IsValid() bool {
	switch t {
	case TreatmentSurgery, TreatmentCancerTreatment, TreatmentDialysis, TreatmentRehabilitation:
		return true
	}
	return false
}

// UrgencyLevel ranks how urgent a case is
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

func (u UrgencyLevel) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// DonationStatus tracks the payment state of a donation
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
	DonationRefunded  DonationStatus = "refunded"
)

// InvoiceType categorizes proof-of-spend line items
type InvoiceType string

const (
	InvoiceSurgery    InvoiceType = "surgery"
	InvoiceMedication InvoiceType = "medication"
	InvoiceTests      InvoiceType = "tests"
	InvoiceHospital   InvoiceType = "hospital"
	InvoiceOther      InvoiceType = "other"
)

func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceSurgery, InvoiceMedication, InvoiceTests, InvoiceHospital, InvoiceOther:
		return true
	}
	return false
}

// InvoiceStatus tracks verification of an expense record
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceVerified InvoiceStatus = "verified"
)

// DonorType distinguishes the kinds of donor accounts
type DonorType string

const (
	DonorNGO       DonorType = "ngo"
	DonorPharmacy  DonorType = "pharmacy"
	DonorHospital  DonorType = "hospital"
	DonorPrivate   DonorType = "private_donor"
	DonorVolunteer DonorType = "volunteer"
)

func (t DonorType) IsValid() bool {
	switch t {
	case DonorNGO, DonorPharmacy, DonorHospital, DonorPrivate, DonorVolunteer:
		return true
	}
	return false
}
