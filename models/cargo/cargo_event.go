package cargo

import (
	"time"
)

// CargoEvent is an append-only snapshot of a cargo's state written whenever a
// lifecycle transition happens. Rows are never updated or deleted.
type CargoEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CargoID uint  `gorm:"not null;index" json:"cargo_id"`
	Cargo   Cargo `gorm:"foreignKey:CargoID" json:"cargo"`

	DriverID  *uint     `json:"driver_id,omitempty"`
	Situation Situation `gorm:"type:varchar(20);not null" json:"cargo_situation"`

	EventType string    `gorm:"type:varchar(50);not null" json:"event_type"` // taken, delivered
	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the CargoEvent model.
func (CargoEvent) TableName() string {
	return "cargo_events"
}
