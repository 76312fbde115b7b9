package auth

import (
	"fmt"

	"cargo-delivery/models/user"
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username    string    `json:"username" validate:"required,min=3,max=255"`
	Mail        string    `json:"mail" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=6"`
	PhoneNumber string    `json:"phone_number" validate:"required,min=10,max=20"`
	Role        user.Role `json:"role" validate:"required,oneof=DISTRIBUTOR DRIVER"`
}

func (r RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Mail == "" {
		return fmt.Errorf("mail is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if !r.Role.IsValid() {
		return fmt.Errorf("role must be either 'DISTRIBUTOR' or 'DRIVER'")
	}
	return nil
}

// VerifyUserRequest carries the activation code issued at registration.
type VerifyUserRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required,len=6"`
}

func (r VerifyUserRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.VerificationCode == "" {
		return fmt.Errorf("verification_code is required")
	}
	return nil
}

// LoginRequest authenticates by username and password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ForgotPasswordRequest asks for a reset code by mail address.
type ForgotPasswordRequest struct {
	Mail string `json:"mail" validate:"required,email"`
}

func (r ForgotPasswordRequest) Validate() error {
	if r.Mail == "" {
		return fmt.Errorf("mail is required")
	}
	return nil
}

// ChangePasswordRequest asks for a reset code by username.
type ChangePasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// SetPasswordRequest finishes the forgot/change password flow.
type SetPasswordRequest struct {
	Mail          string `json:"mail" validate:"required,email"`
	PasswordCode  string `json:"password_code" validate:"required,len=6"`
	Password      string `json:"password" validate:"required,min=6"`
	CheckPassword string `json:"check_password" validate:"required,min=6"`
}

func (r SetPasswordRequest) Validate() error {
	if r.Mail == "" {
		return fmt.Errorf("mail is required")
	}
	if r.PasswordCode == "" {
		return fmt.Errorf("password_code is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if r.CheckPassword == "" {
		return fmt.Errorf("check_password is required")
	}
	return nil
}

// UserResponse is the public-safe projection of an account. It never carries
// the password digest or a raw verification code.
type UserResponse struct {
	Username string    `json:"username"`
	Mail     string    `json:"mail"`
	Role     user.Role `json:"role"`
}

// NewUserResponse projects an account into its public shape.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		Username: u.Username,
		Mail:     u.Mail,
		Role:     u.Role,
	}
}

// LoginResponse pairs the bearer token with the account projection.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
