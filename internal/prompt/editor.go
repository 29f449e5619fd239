package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-formfill/pkg/model"
)

// ErrDiscarded is returned when the user rejects the edited values.
var ErrDiscarded = errors.New("prompt: changes discarded")

// EditDataBag lets the user pick field types from bag and retype their
// values. Clearing a value removes it, so planning falls back to synthetic
// data for that type. Confirmation is asked only when something changed. The
// input bag is never modified.
func EditDataBag(ctx context.Context, driver Driver, bag model.DataBag) (model.DataBag, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is nil")
	}
	selected, err := driver.PickFields(ctx, model.AllFieldTypes(), bag)
	if err != nil {
		return nil, err
	}

	out := bag.Clone()
	var changes []Change
	seen := make(map[model.FieldType]struct{}, len(selected))
	for _, ft := range selected {
		if _, dup := seen[ft]; dup || !ft.Classified() {
			continue
		}
		seen[ft] = struct{}{}

		current := bag[ft]
		value, err := driver.FieldValue(ctx, ft, current)
		if err != nil {
			return nil, err
		}
		value = strings.TrimSpace(value)
		if err := ValidateValue(ft, value); err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", ft, err)
		}
		if value == current {
			continue
		}
		changes = append(changes, Change{FieldType: ft, Old: current, New: value})
		if value == "" {
			delete(out, ft)
			continue
		}
		out[ft] = value
	}

	if len(changes) == 0 {
		return out, nil
	}
	ok, err := driver.ConfirmChanges(ctx, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDiscarded
	}
	return out, nil
}

// ValidateValue applies light shape checks for field types with an obvious
// format. Empty values are always accepted.
func ValidateValue(ft model.FieldType, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch ft {
	case model.FieldTypeEmail:
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return fmt.Errorf("%q is not an e-mail address", value)
		}
	case model.FieldTypePhone:
		if countDigits(value) < 10 {
			return fmt.Errorf("%q needs at least 10 digits", value)
		}
	case model.FieldTypeDateOfBirth:
		for _, layout := range []string{"02.01.2006", "2006-01-02"} {
			if _, err := time.Parse(layout, value); err == nil {
				return nil
			}
		}
		return fmt.Errorf("%q is not a DD.MM.YYYY or YYYY-MM-DD date", value)
	case model.FieldTypeAge:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 150 {
			return fmt.Errorf("%q is not an age", value)
		}
	case model.FieldTypePostalCode:
		if countDigits(value) != len([]rune(value)) {
			return fmt.Errorf("%q must contain digits only", value)
		}
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
