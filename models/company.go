package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is the tenant every other record is scoped to.
type Company struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string            `gorm:"not null" json:"name"`
	Address  string            `json:"address"`
	Settings datatypes.JSONMap `gorm:"type:jsonb" json:"settings"`

	Users []User `gorm:"foreignKey:CompanyID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (co *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if co.ID == uuid.Nil {
		co.ID = uuid.New()
	}
	return
}

// SettingFloat returns a numeric company setting, or fallback when the key is
// missing or not a number.
func (co *Company) SettingFloat(key string, fallback float64) float64 {
	if co.Settings == nil {
		return fallback
	}
	switch v := co.Settings[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		// JSONMap scans with UseNumber.
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}

// SettingBool returns a boolean company setting, or fallback.
func (co *Company) SettingBool(key string, fallback bool) bool {
	if co.Settings == nil {
		return fallback
	}
	if v, ok := co.Settings[key].(bool); ok {
		return v
	}
	return fallback
}
