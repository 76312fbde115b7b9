package cargo

import (
	"time"

	"cargo-delivery/models/user"
)

// Cargo represents one parcel handoff from a distributor to a driver.
type Cargo struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	DistributorID uint      `gorm:"not null;index" json:"distributor_id"`
	Distributor   user.User `gorm:"foreignKey:DistributorID" json:"distributor"`

	// DriverID is set exactly once, at pickup.
	DriverID *uint      `gorm:"index" json:"driver_id,omitempty"`
	Driver   *user.User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	Situation Situation `gorm:"column:cargo_situation;type:varchar(20);not null;index" json:"cargo_situation"`

	Description string `gorm:"type:text" json:"description"`
	Phone       string `gorm:"type:varchar(20);not null" json:"phone"`

	// Pickup point, set at creation.
	SelfLatitude  float64 `gorm:"not null" json:"self_latitude"`
	SelfLongitude float64 `gorm:"not null" json:"self_longitude"`

	// Destination, absent until the distributor sets it via update.
	TargetLatitude  *float64 `json:"target_latitude,omitempty"`
	TargetLongitude *float64 `json:"target_longitude,omitempty"`

	Weight float64 `gorm:"not null" json:"weight"`
	Height float64 `gorm:"not null" json:"height"`

	// One-time delivery code, generated at pickup, stored encrypted and
	// consumed at delivery.
	VerificationCode *string `gorm:"type:varchar(255)" json:"-"`

	TakingTime    *time.Time `json:"taking_time,omitempty"`
	DeliveredTime *time.Time `json:"delivered_time,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Cargo model.
func (Cargo) TableName() string {
	return "cargoes"
}

// HasTarget reports whether a destination has been set.
func (c *Cargo) HasTarget() bool {
	return c.TargetLatitude != nil && c.TargetLongitude != nil
}
