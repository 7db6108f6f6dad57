package domain

import "time"

// JobOffer is a vacancy published by an employer.
type JobOffer struct {
	ID          string
	EmployerID  *string
	Title       string
	Description string
	Location    string
	SalaryMin   *int
	SalaryMax   *int
	Confirmed   bool
	Removed     bool
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID returns the owning employer, if any.
func (o *JobOffer) OwnerID() (string, bool) {
	if o == nil || o.EmployerID == nil {
		return "", false
	}
	return *o.EmployerID, true
}

// Public reports whether the offer appears in the public listing.
func (o *JobOffer) Public() bool {
	return o.Confirmed && !o.Removed
}

// JobOfferApplication links a standard user and a CV to an offer.
type JobOfferApplication struct {
	ID        string
	OfferID   string
	UserID    string
	CVID      string
	CreatedAt time.Time
}
