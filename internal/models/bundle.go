package models

import "time"

// Bundle groups beats sold together at a combined price.
type Bundle struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Description     string    `gorm:"size:1000" json:"description"`
	IndividualPrice float64   `gorm:"not null;default:0" json:"individual_price"`
	BundlePrice     float64   `gorm:"not null" json:"bundle_price"`
	DiscountPercent int       `gorm:"not null;default:0" json:"discount_percent"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	ImageKey        string    `gorm:"size:255" json:"image_key"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Beats []Beat `gorm:"many2many:bundle_beats;constraint:OnDelete:CASCADE" json:"beats,omitempty"`
}

// BundleBeat is the bundle membership join row.
type BundleBeat struct {
	BundleID uint `gorm:"primaryKey"`
	BeatID   uint `gorm:"primaryKey"`
}

func (BundleBeat) TableName() string {
	return "bundle_beats"
}

// BeatIDs returns the ids of the loaded member beats.
func (b *Bundle) BeatIDs() []uint {
	ids := make([]uint, len(b.Beats))
	for i, beat := range b.Beats {
		ids[i] = beat.ID
	}
	return ids
}
