package dto

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the successful login response.
type LoginResult struct {
	Token    string `json:"token"`
	UserRole string `json:"userRole"`
}
