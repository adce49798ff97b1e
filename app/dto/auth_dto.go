// Package dto contains Data Transfer Objects for API request and response structures
package dto

// LoginRequest represents the request payload for credential login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// GoogleAuthRequest represents the request payload for federated login
type GoogleAuthRequest struct {
	IDToken string `json:"id_token" validate:"required" example:"eyJhbGciOiJSUzI1NiIsImtpZCI6..."`
	// Role is only consulted when no account exists for the verified email yet.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=tailor customer" example:"customer"`
}

// AuthAccountDTO represents the resolved account returned by authentication responses
type AuthAccountDTO struct {
	ID             uint    `json:"id" example:"123"`
	UUID           string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Role           string  `json:"role" example:"customer"`
	Email          string  `json:"email" example:"user@example.com"`
	FirstName      string  `json:"first_name" example:"Sara"`
	LastName       string  `json:"last_name" example:"Ahmadi"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	IsActive       *bool   `json:"is_active" example:"true"`
	CreatedAt      string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SessionDTO represents the issued token in authentication responses
type SessionDTO struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int    `json:"expires_in" example:"2592000"`
}

// LoginResponse represents a successful authentication result
type LoginResponse struct {
	Account AuthAccountDTO `json:"account"`
	Session SessionDTO     `json:"session"`
}

// RegistrationRequiredDTO is returned when a federated tailor identity has no
// account yet and must complete registration before logging in.
type RegistrationRequiredDTO struct {
	RequiresRegistration bool   `json:"requires_registration" example:"true"`
	Role                 string `json:"role" example:"tailor"`
	Email                string `json:"email" example:"tailor@example.com"`
	Name                 string `json:"name" example:"Sara Ahmadi"`
	GoogleID             string `json:"google_id" example:"111222333444555666777"`
	Picture              string `json:"picture,omitempty" example:"https://lh3.googleusercontent.com/a/photo"`
}
