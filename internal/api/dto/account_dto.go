package dto

import "time"

// StandardRegisterRequest payload for self-registered users.
type StandardRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmployerRegisterRequest payload for employer sign-up.
type EmployerRegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
}

// StaffCreateRequest payload for staff accounts created by account verifiers.
type StaffCreateRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Groups   []string `json:"groups"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerificationRequest changes an account's verification status.
type VerificationRequest struct {
	Status string `json:"status" validate:"required,oneof=VERIFIED WAITING_FOR_VERIFICATION REJECTED BLOCKED"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	VerificationStatus string    `json:"verification_status"`
	Groups             []string  `json:"groups"`
	CreatedAt          time.Time `json:"created_at"`
}
