package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/model"
)

type stubDriver struct {
	picked  []model.FieldType
	values  map[model.FieldType]string
	confirm bool
	err     error

	offered  []model.FieldType
	defaults map[model.FieldType]string
	changes  []Change
}

func (s *stubDriver) PickFields(_ context.Context, types []model.FieldType, _ model.DataBag) ([]model.FieldType, error) {
	s.offered = types
	return s.picked, nil
}

func (s *stubDriver) FieldValue(_ context.Context, ft model.FieldType, current string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.defaults == nil {
		s.defaults = map[model.FieldType]string{}
	}
	s.defaults[ft] = current
	if value, ok := s.values[ft]; ok {
		return value, nil
	}
	return current, nil
}

func (s *stubDriver) ConfirmChanges(_ context.Context, changes []Change) (bool, error) {
	s.changes = changes
	return s.confirm, nil
}

func TestEditDataBag(t *testing.T) {
	bag := model.DataBag{
		model.FieldTypeFirstName: "Анна",
		model.FieldTypeLastName:  "Иванова",
		model.FieldTypeEmail:     "anna@example.test",
	}
	driver := &stubDriver{
		picked: []model.FieldType{
			model.FieldTypeLastName,
			model.FieldTypeEmail,
			model.FieldTypePhone,
			model.FieldTypeLastName,
		},
		values: map[model.FieldType]string{
			model.FieldTypeLastName: "  ",
			model.FieldTypePhone:    "+7 (915) 123-4567",
		},
		confirm: true,
	}

	got, err := EditDataBag(context.Background(), driver, bag)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	want := model.DataBag{
		model.FieldTypeFirstName: "Анна",
		model.FieldTypeEmail:     "anna@example.test",
		model.FieldTypePhone:     "+7 (915) 123-4567",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bag mismatch (-want +got):\n%s", diff)
	}
	if bag[model.FieldTypeLastName] != "Иванова" {
		t.Fatalf("input bag must not be modified")
	}
	if diff := cmp.Diff(model.AllFieldTypes(), driver.offered); diff != "" {
		t.Fatalf("offered types mismatch (-want +got):\n%s", diff)
	}
	if driver.defaults[model.FieldTypeEmail] != "anna@example.test" || len(driver.defaults) != 3 {
		t.Fatalf("unexpected prompt defaults: %+v", driver.defaults)
	}
	wantChanges := []Change{
		{FieldType: model.FieldTypeLastName, Old: "Иванова"},
		{FieldType: model.FieldTypePhone, New: "+7 (915) 123-4567"},
	}
	if diff := cmp.Diff(wantChanges, driver.changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestEditDataBag_DiscardAndErrors(t *testing.T) {
	bag := model.DataBag{model.FieldTypeFirstName: "Анна"}
	edit := map[model.FieldType]string{model.FieldTypeFirstName: "Мария"}

	_, err := EditDataBag(context.Background(), &stubDriver{picked: []model.FieldType{model.FieldTypeFirstName}, values: edit}, bag)
	if !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}

	_, err = EditDataBag(context.Background(), &stubDriver{picked: []model.FieldType{model.FieldTypeFirstName}, err: ErrAborted}, bag)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	_, err = EditDataBag(context.Background(), &stubDriver{
		picked: []model.FieldType{model.FieldTypeEmail},
		values: map[model.FieldType]string{model.FieldTypeEmail: "not-an-address"},
	}, bag)
	if err == nil {
		t.Fatalf("expected invalid e-mail to be rejected")
	}

	for name, driver := range map[string]*stubDriver{
		"nothing picked": {},
		"unchanged":      {picked: []model.FieldType{model.FieldTypeFirstName}},
	} {
		got, err := EditDataBag(context.Background(), driver, bag)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if diff := cmp.Diff(bag, got); diff != "" {
			t.Fatalf("%s: bag mismatch (-want +got):\n%s", name, diff)
		}
		if driver.changes != nil {
			t.Fatalf("%s: confirmation must not be asked", name)
		}
	}

	if _, err := EditDataBag(context.Background(), nil, bag); err == nil {
		t.Fatalf("expected nil driver error")
	}
}

func TestFieldHelp(t *testing.T) {
	if got := FieldHelp(model.FieldTypeDateOfBirth); !strings.Contains(got, "DD.MM.YYYY") || !strings.Contains(got, "Leave empty") {
		t.Fatalf("unexpected date help %q", got)
	}
	if got := FieldHelp(model.FieldTypeCompany); got != "Leave empty to use a generated value." {
		t.Fatalf("unexpected company help %q", got)
	}
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		ft    model.FieldType
		value string
		ok    bool
	}{
		{model.FieldTypeEmail, "a@b.c", true},
		{model.FieldTypeEmail, "a@@b", false},
		{model.FieldTypeEmail, "@b.c", false},
		{model.FieldTypeEmail, "Anna <a@b.c>", false},
		{model.FieldTypeEmail, "a b@c.d", false},
		{model.FieldTypePhone, "+7 (915) 123-45-67", true},
		{model.FieldTypePhone, "12345", false},
		{model.FieldTypeDateOfBirth, "01.02.1990", true},
		{model.FieldTypeDateOfBirth, "1990-02-01", true},
		{model.FieldTypeDateOfBirth, "1 Feb 1990", false},
		{model.FieldTypeAge, "33", true},
		{model.FieldTypeAge, "-3", false},
		{model.FieldTypePostalCode, "101000", true},
		{model.FieldTypePostalCode, "SW1A", false},
		{model.FieldTypeCompany, "anything", true},
		{model.FieldTypeEmail, "", true},
	}
	for _, tt := range tests {
		err := ValidateValue(tt.ft, tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateValue(%s, %q) = %v, want ok=%v", tt.ft, tt.value, err, tt.ok)
		}
	}
}
