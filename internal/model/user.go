package model

// User is an account row from the Users worksheet.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash, or legacy plaintext for old rows
}

// LoginRequest is the payload for student login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=64"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}
