package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateEmployeeRequest struct {
	Username   string   `json:"username"    validate:"required,min=1,max=150"`
	Name       string   `json:"name"        validate:"required,min=2,max=100"`
	Email      *string  `json:"email"       validate:"omitempty,email"`
	Password   string   `json:"password"    validate:"required,min=8"`
	Role       string   `json:"role"        validate:"required,oneof=attendant station_accountant admin"`
	StationIDs []string `json:"station_ids" validate:"omitempty,dive,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EmployeeResponse struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Name       string   `json:"name"`
	Email      *string  `json:"email"`
	Role       string   `json:"role"`
	StationIDs []string `json:"station_ids"`
	Active     bool     `json:"active"`
}

type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"` // seconds
	User         EmployeeResponse `json:"user"`
}
