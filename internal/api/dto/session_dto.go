package dto

// LoginRequest payload shared by every login scope.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
