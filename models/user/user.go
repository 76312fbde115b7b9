package user

import (
	"time"
)

// Role discriminates the two account kinds sharing the users table.
type Role string

const (
	RoleDistributor Role = "DISTRIBUTOR"
	RoleDriver      Role = "DRIVER"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleDistributor || r == RoleDriver
}

// User is a single account row for both distributors and drivers. Role-specific
// columns (Address for distributors, CarType for drivers) live on the same row
// and are read according to the Role discriminant.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid     string `gorm:"type:varchar(36);not null;unique" json:"uuid"`
	Username string `gorm:"type:varchar(255);not null;unique" json:"username"`
	Mail     string `gorm:"type:varchar(255);not null;unique" json:"mail"`
	Phone    string `gorm:"type:varchar(20);not null;unique" json:"phone"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`

	// Enabled stays false until the registration code is verified.
	Enabled               bool       `gorm:"default:false" json:"enabled"`
	VerificationCode      *string    `gorm:"type:varchar(6)" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`

	// Role payload columns.
	Address *string `gorm:"type:text" json:"address,omitempty"`
	CarType *string `gorm:"type:varchar(50)" json:"car_type,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasPendingCode reports whether a verification code is outstanding.
func (u *User) HasPendingCode() bool {
	return u.VerificationCode != nil && *u.VerificationCode != ""
}

// ClearVerification drops the pending code and its expiry.
func (u *User) ClearVerification() {
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
}
