package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"tabsync/internal/constants"
	"tabsync/internal/utils"
)

// Limits are the validation bounds for inbound payloads. They come from
// configuration; the zero value is not usable.
type Limits struct {
	MaxItemName int
	MaxNotes    int
	MaxPrice    float64
	MaxTax      float64
}

// Validator checks inbound payloads before any session mutation happens.
// Every rejection carries the human-readable message sent back to the client.
type Validator struct {
	validate *validator.Validate
	limits   Limits
}

func NewValidator(limits Limits) *Validator {
	return &Validator{
		validate: validator.New(),
		limits:   limits,
	}
}

// ValidatedOrder is an accepted add_order payload with the price parsed and
// rounded and the quantity normalized.
type ValidatedOrder struct {
	Name     string
	Item     string
	Quantity int
	Price    *float64
	Notes    string
}

// ValidateOrder checks an add_order payload. The returned error message is
// safe to send to the client verbatim.
func (v *Validator) ValidateOrder(p *OrderPayload) (ValidatedOrder, error) {
	if p == nil {
		return ValidatedOrder{}, fmt.Errorf(constants.MsgItemNameTooLongFmt, v.limits.MaxItemName)
	}

	itemRule := fmt.Sprintf("required,max=%d", v.limits.MaxItemName)
	if err := v.validate.Var(strings.TrimSpace(p.Item), itemRule); err != nil {
		return ValidatedOrder{}, fmt.Errorf(constants.MsgItemNameTooLongFmt, v.limits.MaxItemName)
	}

	notesRule := fmt.Sprintf("max=%d", v.limits.MaxNotes)
	if err := v.validate.Var(strings.TrimSpace(p.Notes), notesRule); err != nil {
		return ValidatedOrder{}, fmt.Errorf(constants.MsgNotesTooLongFmt, v.limits.MaxNotes)
	}

	if p.Quantity < 0 {
		return ValidatedOrder{}, errors.New(constants.MsgInvalidQuantity)
	}

	price, err := v.parsePrice(p.Price)
	if err != nil {
		return ValidatedOrder{}, err
	}

	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return ValidatedOrder{
		Name:     p.Name,
		Item:     p.Item,
		Quantity: quantity,
		Price:    price,
		Notes:    p.Notes,
	}, nil
}

func (v *Validator) parsePrice(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	price, ok := parseNumeric(raw)
	if !ok {
		return nil, fmt.Errorf(constants.MsgInvalidPriceFmt, v.limits.MaxPrice)
	}

	rule := fmt.Sprintf("gte=0,lte=%g", v.limits.MaxPrice)
	if err := v.validate.Var(price, rule); err != nil {
		return nil, fmt.Errorf(constants.MsgInvalidPriceFmt, v.limits.MaxPrice)
	}

	rounded := utils.Round2(price)
	return &rounded, nil
}

// ValidateTax parses and bounds-checks a set_tax value, returning it rounded
// to 2 decimals.
func (v *Validator) ValidateTax(raw json.RawMessage) (float64, error) {
	tax, ok := parseNumeric(raw)
	if !ok {
		return 0, fmt.Errorf(constants.MsgInvalidTaxFmt, v.limits.MaxTax)
	}

	rule := fmt.Sprintf("gte=0,lte=%g", v.limits.MaxTax)
	if err := v.validate.Var(tax, rule); err != nil {
		return 0, fmt.Errorf(constants.MsgInvalidTaxFmt, v.limits.MaxTax)
	}

	return utils.Round2(tax), nil
}

// parseNumeric accepts a JSON number or a numeric string. Null, NaN and
// infinities are rejected; json.Unmarshal would silently pass null through.
func parseNumeric(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
