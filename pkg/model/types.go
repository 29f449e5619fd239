package model

import (
	"sort"
	"strings"
)

// FieldType is the semantic category of personal data a control expects.
type FieldType string

const (
	FieldTypeUnclassified FieldType = ""
	FieldTypeFirstName    FieldType = "firstName"
	FieldTypeLastName     FieldType = "lastName"
	FieldTypeFullName     FieldType = "fullName"
	FieldTypeMiddleName   FieldType = "middleName"
	FieldTypePhone        FieldType = "phone"
	FieldTypeEmail        FieldType = "email"
	FieldTypeAddress      FieldType = "address"
	FieldTypeCity         FieldType = "city"
	FieldTypeStreet       FieldType = "street"
	FieldTypeHouse        FieldType = "house"
	FieldTypeFlat         FieldType = "flat"
	FieldTypeCompany      FieldType = "company"
	FieldTypeDateOfBirth  FieldType = "dateOfBirth"
	FieldTypePassport     FieldType = "passport"
	FieldTypeAge          FieldType = "age"
	FieldTypePostalCode   FieldType = "postalCode"
	FieldTypeCountry      FieldType = "country"
	FieldTypeRegion       FieldType = "region"
)

var allFieldTypes = []FieldType{
	FieldTypeFirstName,
	FieldTypeLastName,
	FieldTypeFullName,
	FieldTypeMiddleName,
	FieldTypePhone,
	FieldTypeEmail,
	FieldTypeAddress,
	FieldTypeCity,
	FieldTypeStreet,
	FieldTypeHouse,
	FieldTypeFlat,
	FieldTypeCompany,
	FieldTypeDateOfBirth,
	FieldTypePassport,
	FieldTypeAge,
	FieldTypePostalCode,
	FieldTypeCountry,
	FieldTypeRegion,
}

// AllFieldTypes returns every classified field type in a stable order. The
// unclassified value is not included.
func AllFieldTypes() []FieldType {
	return append([]FieldType(nil), allFieldTypes...)
}

// ParseFieldType resolves the camelCase identifier used in dictionaries and
// data files. Matching ignores case and surrounding whitespace.
func ParseFieldType(raw string) (FieldType, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FieldTypeUnclassified, false
	}
	for _, ft := range allFieldTypes {
		if strings.EqualFold(string(ft), trimmed) {
			return ft, true
		}
	}
	return FieldTypeUnclassified, false
}

// Classified reports whether the field type names a real category.
func (t FieldType) Classified() bool {
	return t != FieldTypeUnclassified
}

// String returns the identifier, or "unclassified" for the zero value.
func (t FieldType) String() string {
	if t == FieldTypeUnclassified {
		return "unclassified"
	}
	return string(t)
}

// DataBag holds caller-supplied values keyed by field type. A missing key or an
// empty value both mean "no caller-supplied value".
type DataBag map[FieldType]string

// Lookup returns the value for the field type when one is present.
func (b DataBag) Lookup(t FieldType) (string, bool) {
	if b == nil || !t.Classified() {
		return "", false
	}
	value, ok := b[t]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Clone returns a shallow copy that can be mutated independently.
func (b DataBag) Clone() DataBag {
	out := make(DataBag, len(b))
	for key, value := range b {
		out[key] = value
	}
	return out
}

// DataBagFromMap converts a string keyed map (e.g. decoded JSON) into a
// DataBag. Unknown keys are returned so callers can report them.
func DataBagFromMap(raw map[string]string) (DataBag, []string) {
	bag := make(DataBag, len(raw))
	var unknown []string
	for key, value := range raw {
		ft, ok := ParseFieldType(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		bag[ft] = value
	}
	sort.Strings(unknown)
	return bag, unknown
}
