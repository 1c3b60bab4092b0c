package dto

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=2,max=55" example:"palmlover"`
	Email    string  `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password string  `json:"password" binding:"required,min=8,max=72" example:"s3cret-password"`
	FullName *string `json:"fullName" binding:"omitempty,max=75" example:"Jane Palm"`
}

// LoginRequest represents the login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-password"`
}

// AuthResponse is returned by register and login. The token is also set as a cookie.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
