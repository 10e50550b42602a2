package domain

import (
	"errors"
	"time"
)

// ConsultationStatus represents the lifecycle state of a consultation lead.
type ConsultationStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationContacted ConsultationStatus = "contacted"
	ConsultationScheduled ConsultationStatus = "scheduled"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

// ProjectType enumerates the kinds of projects a visitor can ask about.
var projectTypes = map[string]struct{}{
	"Residential":     {},
	"Commercial":      {},
	"Renovation":      {},
	"Interior Design": {},
	"Smart Home":      {},
}

var ErrConsultationNotFound = errors.New("consultation not found")
var ErrInvalidProjectType = errors.New("invalid project type")
var ErrInvalidConsultationStatus = errors.New("invalid consultation status")

// Valid reports whether the status is one of the known lifecycle states.
func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationPending, ConsultationContacted, ConsultationScheduled,
		ConsultationCompleted, ConsultationCancelled:
		return true
	}
	return false
}

// ValidProjectType reports whether t names a known project type.
func ValidProjectType(t string) bool {
	_, ok := projectTypes[t]
	return ok
}

// Consultation is a lead submitted through the public contact form.
type Consultation struct {
	ID               string             `json:"id" bson:"_id,omitempty"`
	FullName         string             `json:"full_name" bson:"full_name"`
	Email            string             `json:"email" bson:"email"`
	Phone            string             `json:"phone" bson:"phone"`
	ProjectType      string             `json:"project_type" bson:"project_type"`
	ProjectDetails   string             `json:"project_details" bson:"project_details"`
	Status           ConsultationStatus `json:"status" bson:"status"`
	ConsultationDate *time.Time         `json:"consultation_date,omitempty" bson:"consultation_date,omitempty"`
	Notes            string             `json:"notes" bson:"notes"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}
