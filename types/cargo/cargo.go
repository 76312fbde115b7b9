package cargo

import (
	"fmt"

	cargoModel "cargo-delivery/models/cargo"
)

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Measure is the physical size of a cargo.
type Measure struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

// CargoRequest creates or updates a cargo. TargetLocation is optional at
// creation and routinely set later via update.
type CargoRequest struct {
	Description    string    `json:"description" validate:"omitempty,max=2000"`
	SelfLocation   Location  `json:"self_location" validate:"required"`
	TargetLocation *Location `json:"target_location"`
	Measure        Measure   `json:"measure" validate:"required"`
	PhoneNumber    string    `json:"phone_number" validate:"required,min=10,max=20"`
}

func (r CargoRequest) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if r.Measure.Weight <= 0 {
		return fmt.Errorf("measure.weight must be positive")
	}
	if r.Measure.Height <= 0 {
		return fmt.Errorf("measure.height must be positive")
	}
	return nil
}

// DeliverCargoRequest carries the one-time delivery code.
type DeliverCargoRequest struct {
	VerificationCode string `json:"verification_code" validate:"required,len=6"`
}

func (r DeliverCargoRequest) Validate() error {
	if r.VerificationCode == "" {
		return fmt.Errorf("verification_code is required")
	}
	return nil
}

// CargoResponse is the distributor-facing projection of a cargo. The delivery
// code is never included.
type CargoResponse struct {
	ID             uint                 `json:"id"`
	Description    string               `json:"description"`
	SelfLocation   Location             `json:"self_location"`
	TargetLocation *Location            `json:"target_location,omitempty"`
	Measure        Measure              `json:"measure"`
	PhoneNumber    string               `json:"phone_number"`
	CargoSituation cargoModel.Situation `json:"cargo_situation"`
}

// NewCargoResponse projects a cargo row.
func NewCargoResponse(c *cargoModel.Cargo) CargoResponse {
	resp := CargoResponse{
		ID:             c.ID,
		Description:    c.Description,
		SelfLocation:   Location{Latitude: c.SelfLatitude, Longitude: c.SelfLongitude},
		Measure:        Measure{Weight: c.Weight, Height: c.Height},
		PhoneNumber:    c.Phone,
		CargoSituation: c.Situation,
	}
	if c.HasTarget() {
		resp.TargetLocation = &Location{Latitude: *c.TargetLatitude, Longitude: *c.TargetLongitude}
	}
	return resp
}

// CargoListItem is the driver-facing listing row; it adds the distributor's
// contact phone.
type CargoListItem struct {
	ID              uint                 `json:"id"`
	SelfLocation    Location             `json:"self_location"`
	TargetLocation  *Location            `json:"target_location,omitempty"`
	Measure         Measure              `json:"measure"`
	CargoSituation  cargoModel.Situation `json:"cargo_situation"`
	PhoneNumber     string               `json:"phone_number"`
	DistPhoneNumber string               `json:"dist_phone_number"`
}

// NewCargoListItem projects a cargo row with its preloaded distributor.
func NewCargoListItem(c *cargoModel.Cargo) CargoListItem {
	item := CargoListItem{
		ID:              c.ID,
		SelfLocation:    Location{Latitude: c.SelfLatitude, Longitude: c.SelfLongitude},
		Measure:         Measure{Weight: c.Weight, Height: c.Height},
		CargoSituation:  c.Situation,
		PhoneNumber:     c.Phone,
		DistPhoneNumber: c.Distributor.Phone,
	}
	if c.HasTarget() {
		item.TargetLocation = &Location{Latitude: *c.TargetLatitude, Longitude: *c.TargetLongitude}
	}
	return item
}

// PageMeta mirrors the pagination envelope of the listing endpoints.
type PageMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalItems  int64 `json:"totalItems"`
	PageSize    int   `json:"pageSize"`
	IsFirst     bool  `json:"isFirst"`
	IsLast      bool  `json:"isLast"`
}

// PagedCargoes is one page of cargo listings plus its meta block.
type PagedCargoes struct {
	Data []CargoListItem `json:"data"`
	Meta PageMeta        `json:"meta"`
}
