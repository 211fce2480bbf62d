package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderOwnerName marks a vehicle auto-created at login before the real
// owner registered. Register claims such a record instead of rejecting it.
const PlaceholderOwnerName = "Vehicle Owner"

type Vehicle struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"vehicle_number"`
	OwnerName     string    `gorm:"type:varchar(128);not null" json:"owner_name"`
	OwnerDOBHash  string    `gorm:"type:varchar(128);not null" json:"-"`
	PhoneNumber   *string   `gorm:"type:varchar(32)" json:"phone_number"`
	Email         *string   `gorm:"type:varchar(128)" json:"email"`
	Address       *string   `gorm:"type:text" json:"address"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *Vehicle) IsPlaceholder() bool {
	return v.OwnerName == PlaceholderOwnerName
}
