package dto

import (
	"time"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// WitnessView is one witness in a detail or dashboard response.
type WitnessView struct {
	Name       string  `json:"name"`
	FatherName string  `json:"father_name"`
	BirthDate  *string `json:"birth_date,omitempty"`
	BirthPlace string  `json:"birth_place,omitempty"`
	Address    string  `json:"address,omitempty"`
	Order      int     `json:"order"`
}

// ApplicationSummary is one row in the staff list view.
type ApplicationSummary struct {
	ID                int64                    `json:"id"`
	ApplicationNumber string                   `json:"application_number"`
	Status            domain.ApplicationStatus `json:"status"`
	PaymentStatus     domain.PaymentStatus     `json:"payment_status"`
	GroomName         string                   `json:"groom_name"`
	BrideName         string                   `json:"bride_name"`
	ContactNumber     string                   `json:"contact_number"`
	CreatedAt         time.Time                `json:"created_at"`
}

// ApplicationDetail is the full read model for staff review and the portal
// dashboard. Account credentials have no field here and never will.
type ApplicationDetail struct {
	ID                int64                    `json:"id"`
	ApplicationNumber string                   `json:"application_number"`
	Status            domain.ApplicationStatus `json:"status"`

	GroomName          string  `json:"groom_name"`
	GroomFatherName    string  `json:"groom_father_name"`
	GroomBirthDate     *string `json:"groom_birth_date,omitempty"`
	GroomBirthPlace    string  `json:"groom_birth_place,omitempty"`
	GroomAddress       string  `json:"groom_address,omitempty"`
	GroomContactNumber string  `json:"contact_number"`
	BrideName          string  `json:"bride_name"`
	BrideFatherName    string  `json:"bride_father_name"`
	BrideBirthDate     *string `json:"bride_birth_date,omitempty"`
	BrideBirthPlace    string  `json:"bride_birth_place,omitempty"`
	BrideAddress       string  `json:"bride_address,omitempty"`

	GroomRepresentative string `json:"groom_representative,omitempty"`
	BrideRepresentative string `json:"bride_representative,omitempty"`

	MahrAmount string `json:"mahr_amount,omitempty"`
	MahrType   string `json:"mahr_type,omitempty"`

	SolemnisationDate  *string `json:"solemnisation_date,omitempty"`
	SolemnisationTime  string  `json:"solemnisation_time,omitempty"`
	SolemnisationPlace string  `json:"solemnisation_place,omitempty"`

	DocumentsVerified   bool       `json:"documents_verified"`
	DocumentsVerifiedAt *time.Time `json:"documents_verified_at,omitempty"`

	DepositAmount      *float64             `json:"deposit_amount,omitempty"`
	PaymentStatus      domain.PaymentStatus `json:"payment_status"`
	PaymentReceiptPath *string              `json:"payment_receipt_path,omitempty"`
	PaymentVerifiedAt  *time.Time           `json:"payment_verified_at,omitempty"`

	AppointmentDate     *string `json:"appointment_date,omitempty"`
	AppointmentTime     string  `json:"appointment_time,omitempty"`
	AppointmentLocation string  `json:"appointment_location,omitempty"`

	CertificateReady bool `json:"certificate_ready"`

	IsDeleted bool      `json:"is_deleted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Witnesses []WitnessView `json:"witnesses"`
}

// NewApplicationSummary maps a domain row to the list view.
func NewApplicationSummary(app *domain.Application) ApplicationSummary {
	return ApplicationSummary{
		ID:                app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		PaymentStatus:     app.PaymentStatus,
		GroomName:         app.GroomName,
		BrideName:         app.BrideName,
		ContactNumber:     app.GroomContactNumber,
		CreatedAt:         app.CreatedAt,
	}
}

// NewApplicationDetail maps a domain aggregate to the full read model.
func NewApplicationDetail(app *domain.Application, witnesses []domain.Witness) ApplicationDetail {
	detail := ApplicationDetail{
		ID:                  app.ID,
		ApplicationNumber:   app.ApplicationNumber,
		Status:              app.Status,
		GroomName:           app.GroomName,
		GroomFatherName:     app.GroomFatherName,
		GroomBirthDate:      app.GroomBirthDate,
		GroomBirthPlace:     app.GroomBirthPlace,
		GroomAddress:        app.GroomAddress,
		GroomContactNumber:  app.GroomContactNumber,
		BrideName:           app.BrideName,
		BrideFatherName:     app.BrideFatherName,
		BrideBirthDate:      app.BrideBirthDate,
		BrideBirthPlace:     app.BrideBirthPlace,
		BrideAddress:        app.BrideAddress,
		GroomRepresentative: app.GroomRepresentative,
		BrideRepresentative: app.BrideRepresentative,
		MahrAmount:          app.MahrAmount,
		MahrType:            app.MahrType,
		SolemnisationDate:   app.SolemnisationDate,
		SolemnisationTime:   app.SolemnisationTime,
		SolemnisationPlace:  app.SolemnisationPlace,
		DocumentsVerified:   app.DocumentsVerified,
		DocumentsVerifiedAt: app.DocumentsVerifiedAt,
		DepositAmount:       app.DepositAmount,
		PaymentStatus:       app.PaymentStatus,
		PaymentReceiptPath:  app.PaymentReceiptPath,
		PaymentVerifiedAt:   app.PaymentVerifiedAt,
		AppointmentDate:     app.AppointmentDate,
		AppointmentTime:     app.AppointmentTime,
		AppointmentLocation: app.AppointmentLocation,
		CertificateReady:    app.CertificatePath != nil,
		IsDeleted:           app.IsDeleted,
		CreatedAt:           app.CreatedAt,
		UpdatedAt:           app.UpdatedAt,
		Witnesses:           []WitnessView{},
	}
	for _, w := range witnesses {
		detail.Witnesses = append(detail.Witnesses, WitnessView{
			Name:       w.Name,
			FatherName: w.FatherName,
			BirthDate:  w.BirthDate,
			BirthPlace: w.BirthPlace,
			Address:    w.Address,
			Order:      w.WitnessOrder,
		})
	}
	return detail
}

// NotificationView is one in-app notification row.
type NotificationView struct {
	ID            int64     `json:"id"`
	ApplicationID *int64    `json:"application_id,omitempty"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewNotificationViews maps notification rows.
func NewNotificationViews(rows []domain.Notification) []NotificationView {
	views := make([]NotificationView, 0, len(rows))
	for _, n := range rows {
		views = append(views, NotificationView{
			ID:            n.ID,
			ApplicationID: n.ApplicationID,
			Type:          string(n.Type),
			Message:       n.Message,
			IsRead:        n.IsRead,
			CreatedAt:     n.CreatedAt,
		})
	}
	return views
}
