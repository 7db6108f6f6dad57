package events

import (
	"time"

	"github.com/spec-kit/social-services/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered   EventType = "account_registered"
	EventAccountVerification EventType = "account_verification_changed"
	EventJobOfferCreated     EventType = "job_offer_created"
	EventJobOfferConfirmed   EventType = "job_offer_confirmed"
	EventJobOfferRemoved     EventType = "job_offer_removed"
	EventJobApplication      EventType = "job_offer_application_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string             `json:"account_id"`
	Type      domain.AccountType `json:"type"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     *Actor      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Email string             `json:"email"`
	Name  string             `json:"name"`
	Type  domain.AccountType `json:"type"`
}

// AccountVerificationPayload payload.
type AccountVerificationPayload struct {
	OldStatus domain.VerificationStatus `json:"old_status"`
	NewStatus domain.VerificationStatus `json:"new_status"`
}

// JobOfferPayload payload shared by offer lifecycle events.
type JobOfferPayload struct {
	Title      string  `json:"title"`
	EmployerID *string `json:"employer_id,omitempty"`
	Confirmed  bool    `json:"confirmed"`
}

// JobApplicationPayload payload.
type JobApplicationPayload struct {
	ApplicationID string  `json:"application_id"`
	OfferTitle    string  `json:"offer_title"`
	EmployerID    *string `json:"employer_id,omitempty"`
	ApplicantID   string  `json:"applicant_id"`
}

// ActorOf builds event actor metadata for an account.
func ActorOf(account *domain.Account) *Actor {
	if account == nil {
		return nil
	}
	return &Actor{AccountID: account.ID, Type: account.Type}
}
