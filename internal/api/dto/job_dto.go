package dto

import "time"

// JobOfferCreateRequest payload for POST /job/offer-create.
type JobOfferCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Location    string `json:"location" validate:"max=200"`
	SalaryMin   *int   `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *int   `json:"salary_max" validate:"omitempty,gte=0"`
}

// JobOfferUpdateRequest payload for PUT /job/offer/:id.
type JobOfferUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	SalaryMin   *int    `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *int    `json:"salary_max" validate:"omitempty,gte=0"`
}

// ConfirmRequest sets the confirmation flag. An empty body confirms.
type ConfirmRequest struct {
	Confirmed *bool `json:"confirmed"`
}

// ApplyRequest payload for POST /job/offer/:id/apply.
type ApplyRequest struct {
	CVID string `json:"cv_id" validate:"required,uuid"`
}

// JobOfferResponse is the public view of an offer.
type JobOfferResponse struct {
	ID          string    `json:"id"`
	EmployerID  *string   `json:"employer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	SalaryMin   *int      `json:"salary_min"`
	SalaryMax   *int      `json:"salary_max"`
	Confirmed   bool      `json:"confirmed"`
	Removed     bool      `json:"removed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationResponse is the view of a job application.
type ApplicationResponse struct {
	ID        string    `json:"id"`
	OfferID   string    `json:"offer_id"`
	UserID    string    `json:"user_id"`
	CVID      string    `json:"cv_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CVCreateRequest payload for POST /cv.
type CVCreateRequest struct {
	Name        string `json:"name"`
	DocumentURL string `json:"document_url"`
}

// CVResponse is the view of a CV record.
type CVResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DocumentURL string    `json:"document_url"`
	CreatedAt   time.Time `json:"created_at"`
}
