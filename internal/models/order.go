package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order references either a single beat or a bundle.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	BeatID        *uint       `gorm:"index" json:"beat_id,omitempty"`
	BundleID      *uint       `gorm:"index" json:"bundle_id,omitempty"`
	CustomerEmail string      `gorm:"size:255" json:"customer_email"`
	Amount        float64     `gorm:"not null" json:"amount"`
	Status        OrderStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
