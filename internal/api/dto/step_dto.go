package dto

import "time"

// StepCreateRequest payload for POST /steps/step.
type StepCreateRequest struct {
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	Video       *string `json:"video" validate:"omitempty,url"`
}

// StepUpdateRequest payload for PUT /steps/step/:id.
type StepUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Video       *string `json:"video" validate:"omitempty,url"`
}

// SubStepCreateRequest payload for POST /steps/step/:id/substeps.
type SubStepCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	Video       *string `json:"video" validate:"omitempty,url"`
}

// SubStepUpdateRequest payload for PUT /steps/substep/:id.
type SubStepUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Video       *string `json:"video" validate:"omitempty,url"`
}

// SwitchPlacesRequest names the two substeps to swap.
type SwitchPlacesRequest struct {
	First  string `json:"substep_1" validate:"required,uuid"`
	Second string `json:"substep_2" validate:"required,uuid"`
}

// MoveToSpotRequest moves a substep to a position.
type MoveToSpotRequest struct {
	Order *int `json:"order" validate:"required,gte=0"`
}

// SubStepResponse is the public view of a substep.
type SubStepResponse struct {
	ID          string    `json:"id"`
	StepID      string    `json:"step_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Video       *string   `json:"video,omitempty"`
	Order       int       `json:"order"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StepResponse is a step with its nested content.
type StepResponse struct {
	ID          string            `json:"id"`
	ParentID    *string           `json:"parent_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Video       *string           `json:"video,omitempty"`
	SubSteps    []SubStepResponse `json:"substeps"`
	Children    []StepResponse    `json:"children"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
