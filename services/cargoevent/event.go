// Package cargoevent writes append-only audit rows for cargo lifecycle
// transitions.
package cargoevent

import (
	"strconv"

	"gorm.io/gorm"

	cargoModel "cargo-delivery/models/cargo"
)

// Snapshot records the cargo's state after a transition. The row is written
// inside the caller's transaction so it never survives a rollback.
func Snapshot(tx *gorm.DB, c *cargoModel.Cargo, eventType string, actorID uint) error {
	ev := cargoModel.CargoEvent{
		CargoID:   c.ID,
		DriverID:  c.DriverID,
		Situation: c.Situation,
		EventType: eventType,
		CreatedBy: strconv.FormatUint(uint64(actorID), 10),
	}
	return tx.Create(&ev).Error
}
