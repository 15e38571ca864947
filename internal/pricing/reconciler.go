// Package pricing validates operator edits to a beat's price fields and
// derives the resulting consistent state.
package pricing

import (
	"fmt"
	"math"
)

// Reason identifies why an edit was rejected.
type Reason string

const (
	ReasonDiscountFlagForPrice   Reason = "discount_flag_required_for_price"
	ReasonInvalidDiscountedPrice Reason = "invalid_discounted_price"
	ReasonExceedsOriginal        Reason = "discounted_price_exceeds_original"
	ReasonNegativePercent        Reason = "negative_discount_percent"
	ReasonInvalidPercent         Reason = "invalid_discount_percent"
	ReasonPercentComputation     Reason = "discount_computation_failed"
	ReasonDiscountFlagForPercent Reason = "discount_flag_required_for_percent"
)

var reasonText = map[Reason]string{
	ReasonDiscountFlagForPrice:   "must mark discounted to apply a discounted price",
	ReasonInvalidDiscountedPrice: "invalid discounted price, must be > 0",
	ReasonExceedsOriginal:        "discounted price cannot exceed original price",
	ReasonNegativePercent:        "discount percent cannot be negative",
	ReasonInvalidPercent:         "invalid discount percent, must be > 0",
	ReasonPercentComputation:     "cannot compute discount percent without a positive original price",
	ReasonDiscountFlagForPercent: "must mark discounted to apply a discount percent",
}

// Text returns the human readable description of the reason.
func (r Reason) Text() string {
	if t, ok := reasonText[r]; ok {
		return t
	}
	return string(r)
}

// State is the price related portion of a beat record.
type State struct {
	Price           float64
	OriginalPrice   *float64
	IsExclusive     bool
	IsDiscounted    bool
	DiscountPercent int
}

// Edit is a proposed change to a beat's price fields. Nil pointers mean the
// field was not supplied.
type Edit struct {
	OriginalPrice   *float64
	DiscountedPrice *float64
	IsExclusive     bool
	IsDiscounted    bool
	DiscountPercent int
}

// Rejection is returned when an edit violates a pricing rule.
type Rejection struct {
	BeatID  uint
	Title   string
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(beatID uint, title string, reason Reason) *Rejection {
	return &Rejection{
		BeatID:  beatID,
		Title:   title,
		Reason:  reason,
		Message: fmt.Sprintf("%s for beat '%s'", reason.Text(), title),
	}
}

// Reconcile applies edit to current. Rules are checked in a fixed order and
// the first violated one is reported; nothing is derived once a rule fails.
func Reconcile(beatID uint, title string, current State, edit Edit) (State, *Rejection) {
	original := current.OriginalPrice
	if edit.OriginalPrice != nil {
		original = edit.OriginalPrice
	}
	discounted := edit.DiscountedPrice
	percent := edit.DiscountPercent

	if discounted != nil && *discounted > 0 && !edit.IsDiscounted {
		return current, reject(beatID, title, ReasonDiscountFlagForPrice)
	}

	if edit.IsDiscounted {
		if discounted == nil || *discounted <= 0 {
			return current, reject(beatID, title, ReasonInvalidDiscountedPrice)
		}
		if original != nil && *discounted > *original {
			return current, reject(beatID, title, ReasonExceedsOriginal)
		}
		if percent < 0 {
			return current, reject(beatID, title, ReasonNegativePercent)
		}
		if percent == 0 {
			derived, ok := DerivePercent(*discounted, original)
			if !ok {
				return current, reject(beatID, title, ReasonPercentComputation)
			}
			if derived <= 0 {
				return current, reject(beatID, title, ReasonInvalidPercent)
			}
			percent = derived
		}
	}

	if percent > 0 && !edit.IsDiscounted {
		return current, reject(beatID, title, ReasonDiscountFlagForPercent)
	}

	next := current
	if edit.OriginalPrice != nil && (current.OriginalPrice == nil || *current.OriginalPrice != *edit.OriginalPrice) {
		v := *edit.OriginalPrice
		next.OriginalPrice = &v
	}
	next.IsExclusive = edit.IsExclusive

	if edit.IsDiscounted {
		next.Price = *discounted
		next.IsDiscounted = true
		next.DiscountPercent = percent
		return next, nil
	}

	if next.OriginalPrice != nil {
		next.Price = *next.OriginalPrice
	}
	next.IsDiscounted = false
	next.DiscountPercent = 0
	return next, nil
}

// DerivePercent computes round(100 - discounted/original*100). Halves round
// to even. ok is false when original is missing or zero.
func DerivePercent(discounted float64, original *float64) (int, bool) {
	if original == nil || *original == 0 {
		return 0, false
	}
	o := *original
	v := 100 - discounted/o*100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.RoundToEven(v)), true
}
