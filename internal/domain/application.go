package domain

import "time"

// ApplicationStatus enumerates lifecycle states for certificate applications.
type ApplicationStatus string

const (
	StatusAdminReview          ApplicationStatus = "admin_review"
	StatusPaymentPending       ApplicationStatus = "payment_pending"
	StatusPaymentVerified      ApplicationStatus = "payment_verified"
	StatusAppointmentScheduled ApplicationStatus = "appointment_scheduled"
	StatusCompleted            ApplicationStatus = "completed"
	StatusCancelled            ApplicationStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks the deposit payment sub-state.
type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = "none"
	PaymentStatusAmountSet PaymentStatus = "amount_set"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusVerified  PaymentStatus = "verified"
)

// Application is the aggregate for one marriage-certificate case.
// user_id is nullable: deleting the owning account orphans the application
// rather than destroying it.
type Application struct {
	ID                int64
	ApplicationNumber string
	UserID            *int64
	Status            ApplicationStatus

	GroomName          string
	GroomFatherName    string
	GroomBirthDate     *string
	GroomBirthPlace    string
	GroomAddress       string
	GroomContactNumber string
	BrideName          string
	BrideFatherName    string
	BrideBirthDate     *string
	BrideBirthPlace    string
	BrideAddress       string

	// Optional proxies acting on behalf of groom or bride.
	GroomRepresentative string
	BrideRepresentative string

	MahrAmount string
	MahrType   string

	SolemnisationDate  *string
	SolemnisationTime  string
	SolemnisationPlace string

	// Document slots; paths are opaque references into the upload store.
	GroomIDPath             *string
	BrideIDPath             *string
	GroomPhotoPath          *string
	BridePhotoPath          *string
	GroomBirthCertPath      *string
	BrideBirthCertPath      *string
	GroomDivorceCertPath    *string
	BrideDivorceCertPath    *string
	WaliIDPath              *string
	RepresentativeAuthPath  *string

	DocumentsVerified   bool
	VerifiedBy          *int64
	DocumentsVerifiedAt *time.Time

	DepositAmount      *float64
	PaymentStatus      PaymentStatus
	PaymentReceiptPath *string
	PaymentVerifiedAt  *time.Time

	AppointmentDate     *string
	AppointmentTime     string
	AppointmentLocation string

	CertificatePath        *string
	CertificateGeneratedAt *time.Time

	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentCompleted reports whether the deposit has been verified by staff.
func (a *Application) PaymentCompleted() bool {
	return a.PaymentStatus == PaymentStatusVerified
}
