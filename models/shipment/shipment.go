package shipment

import (
	"time"

	"cargo-delivery/models/cargo"
	"cargo-delivery/models/user"
)

// ShipmentSent is the immutable audit row written once a cargo reaches
// DELIVERED, linking the distributor, the driver and the cargo.
type ShipmentSent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	DistributorID uint      `gorm:"not null;index" json:"distributor_id"`
	Distributor   user.User `gorm:"foreignKey:DistributorID" json:"distributor"`

	DriverID uint      `gorm:"not null;index" json:"driver_id"`
	Driver   user.User `gorm:"foreignKey:DriverID" json:"driver"`

	CargoID uint        `gorm:"not null;unique" json:"cargo_id"`
	Cargo   cargo.Cargo `gorm:"foreignKey:CargoID" json:"cargo"`

	Date time.Time `gorm:"not null;index" json:"date"`
}

// TableName sets the table name for the ShipmentSent model.
func (ShipmentSent) TableName() string {
	return "shipment_sents"
}
