package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/pricing"
)

// Flag is a boolean that also accepts the 0/1 encoding used by HTML forms.
type Flag bool

func parseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "", "0", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseFlag(s)
		*f = v
		return err
	}
	v, err := parseFlag(string(data))
	*f = v
	return err
}

// EditRequest is one beat's proposed pricing change.
type EditRequest struct {
	OriginalPrice   *float64 `json:"original_price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	IsExclusive     Flag     `json:"is_exclusive"`
	IsDiscounted    Flag     `json:"is_discounted"`
	DiscountPercent int      `json:"discount_percent"`
}

func (r EditRequest) toEdit() pricing.Edit {
	return pricing.Edit{
		OriginalPrice:   r.OriginalPrice,
		DiscountedPrice: r.DiscountedPrice,
		IsExclusive:     bool(r.IsExclusive),
		IsDiscounted:    bool(r.IsDiscounted),
		DiscountPercent: r.DiscountPercent,
	}
}

type editsBody struct {
	Edits map[string]EditRequest `json:"edits" binding:"required"`
}

func parseBeatID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid beat id %q", s)
	}
	return uint(id), nil
}

func (b editsBody) toEdits() (map[uint]pricing.Edit, error) {
	edits := make(map[uint]pricing.Edit, len(b.Edits))
	for key, req := range b.Edits {
		id, err := parseBeatID(key)
		if err != nil {
			return nil, err
		}
		edits[id] = req.toEdit()
	}
	return edits, nil
}

var formFields = []string{
	"original_price",
	"discounted_price",
	"discount_percent",
	"is_exclusive",
	"is_discounted",
}

// parseEditForm reads fields named <field>_<beat id>. Flags take the last
// submitted value so a hidden 0 followed by a checked checkbox reads as 1.
// Empty price fields count as not supplied. Names whose suffix is not a beat
// id, such as original_price_hidden_<id>, are ignored.
func parseEditForm(form url.Values) (map[uint]pricing.Edit, error) {
	reqs := make(map[uint]*EditRequest)
	for name, values := range form {
		if len(values) == 0 {
			continue
		}
		field, idPart, ok := splitFormName(name)
		if !ok {
			continue
		}
		id, err := parseBeatID(idPart)
		if err != nil {
			continue
		}
		req, ok := reqs[id]
		if !ok {
			req = &EditRequest{}
			reqs[id] = req
		}
		if err := req.setFormValue(field, values); err != nil {
			return nil, fmt.Errorf("beat %d: %w", id, err)
		}
	}

	edits := make(map[uint]pricing.Edit, len(reqs))
	for id, req := range reqs {
		edits[id] = req.toEdit()
	}
	return edits, nil
}

func splitFormName(name string) (field, id string, ok bool) {
	if strings.HasPrefix(name, "original_price_hidden_") {
		return "", "", false
	}
	for _, f := range formFields {
		if strings.HasPrefix(name, f+"_") {
			return f, strings.TrimPrefix(name, f+"_"), true
		}
	}
	return "", "", false
}

func (r *EditRequest) setFormValue(field string, values []string) error {
	last := strings.TrimSpace(values[len(values)-1])
	switch field {
	case "is_exclusive", "is_discounted":
		v, err := parseFlag(last)
		if err != nil {
			return err
		}
		if field == "is_exclusive" {
			r.IsExclusive = v
		} else {
			r.IsDiscounted = v
		}
	case "discount_percent":
		if last == "" {
			r.DiscountPercent = 0
			return nil
		}
		v, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("invalid discount percent %q", last)
		}
		r.DiscountPercent = v
	case "original_price", "discounted_price":
		if last == "" {
			return nil
		}
		v, err := strconv.ParseFloat(last, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q", strings.ReplaceAll(field, "_", " "), last)
		}
		if field == "original_price" {
			r.OriginalPrice = &v
		} else {
			r.DiscountedPrice = &v
		}
	}
	return nil
}
