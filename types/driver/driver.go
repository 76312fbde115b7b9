package driver

import (
	"fmt"
	"time"

	"cargo-delivery/models/shipment"
)

// DriverRequest updates a driver's profile.
type DriverRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=255"`
	Mail        string `json:"mail" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
	CarType     string `json:"car_type" validate:"required"`
}

func (r DriverRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Mail == "" {
		return fmt.Errorf("mail is required")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if r.CarType == "" {
		return fmt.Errorf("car_type is required")
	}
	return nil
}

// DriverResponse is the profile projection returned after an update.
type DriverResponse struct {
	Username    string `json:"username"`
	Mail        string `json:"mail"`
	PhoneNumber string `json:"phone_number"`
	CarType     string `json:"car_type"`
}

// DeliveredReport summarises the driver's completed shipments since a time
// boundary (beginning of day or week).
type DeliveredReport struct {
	Period    string                  `json:"period"`
	Since     time.Time               `json:"since"`
	Count     int64                   `json:"count"`
	Shipments []shipment.ShipmentSent `json:"shipments"`
}
