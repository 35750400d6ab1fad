package models

// LoginRequest defines the structure for admin login requests
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // Seconds
}

// AdminUser is the operator allowed to import rosters and run draws.
// Credentials come from configuration, not from the database.
type AdminUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // bcrypt hash
	Role         string `json:"role"`
}
