package models

import "time"

// DefaultBeatPrice is the price given to migrated beats unless configured
// otherwise.
const DefaultBeatPrice = 19.99

// Beat is a single sellable track in the catalog.
type Beat struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"size:100;not null;uniqueIndex:idx_beats_source" json:"title"`
	Genre  string `gorm:"size:50;uniqueIndex:idx_beats_source" json:"genre"`
	Mood   string `gorm:"size:50;uniqueIndex:idx_beats_source" json:"mood"`
	Folder string `gorm:"size:50;uniqueIndex:idx_beats_source" json:"folder"`

	FileKey    string `gorm:"size:255" json:"file_key"`
	PreviewKey string `gorm:"size:255" json:"preview_key"`
	ImageKey   string `gorm:"size:255" json:"image_key"`

	Price           float64  `gorm:"not null" json:"price"`
	OriginalPrice   *float64 `json:"original_price"`
	IsExclusive     bool     `gorm:"not null;default:false" json:"is_exclusive"`
	IsDiscounted    bool     `gorm:"not null;default:false" json:"is_discounted"`
	DiscountPercent int      `gorm:"not null;default:0" json:"discount_percent"`
	Available       bool     `gorm:"not null" json:"available"`

	// Exclusive hold window
	ReservedBy           *string    `gorm:"size:255" json:"reserved_by,omitempty"`
	ReservedAt           *time.Time `json:"reserved_at,omitempty"`
	ReservationExpiresAt *time.Time `gorm:"index" json:"reservation_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveOriginalPrice returns the undiscounted price, falling back to price
// for rows that never had original_price populated.
func (b *Beat) EffectiveOriginalPrice() float64 {
	if b.OriginalPrice != nil {
		return *b.OriginalPrice
	}
	return b.Price
}
