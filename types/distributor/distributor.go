package distributor

import (
	"fmt"
)

// DistributorRequest updates a distributor's profile.
type DistributorRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=255"`
	Mail        string `json:"mail" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
	Address     string `json:"address" validate:"required"`
}

func (r DistributorRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Mail == "" {
		return fmt.Errorf("mail is required")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// DistributorResponse is the profile projection returned after an update.
type DistributorResponse struct {
	Username    string `json:"username"`
	Mail        string `json:"mail"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}
