package synth

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/model"
)

func TestSynthesize_Shapes(t *testing.T) {
	gen := New(NewRand(42))

	cases := []struct {
		kind    model.ControlKind
		pattern *regexp.Regexp
	}{
		{kind: model.KindEmail, pattern: regexp.MustCompile(`^test\d{1,4}@example\.com$`)},
		{kind: model.KindTel, pattern: regexp.MustCompile(`^\+1 \(\d{3}\) \d{3}-\d{4}$`)},
		{kind: model.KindDate, pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
		{kind: model.KindText, pattern: regexp.MustCompile(`^(test|sample|demo|value|example)\d{1,3}$`)},
		{kind: model.KindTextarea, pattern: regexp.MustCompile(`^(test|sample|demo|value|example)\d{1,3}$`)},
	}

	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			got := gen.Synthesize(model.Control{Kind: tc.kind})
			if !tc.pattern.MatchString(got) {
				t.Fatalf("kind %s produced %q, want match for %s", tc.kind, got, tc.pattern)
			}
		}
	}
}

func TestSynthesize_Ranges(t *testing.T) {
	gen := New(NewRand(7))

	for i := 0; i < 500; i++ {
		for _, kind := range []model.ControlKind{model.KindNumber, model.KindRange} {
			n, err := strconv.Atoi(gen.Synthesize(model.Control{Kind: kind}))
			if err != nil {
				t.Fatalf("number kind produced non integer: %v", err)
			}
			if n < 1 || n > 1000 {
				t.Fatalf("number %d out of [1,1000]", n)
			}
		}

		date := gen.Synthesize(model.Control{Kind: model.KindDate})
		year, _ := strconv.Atoi(date[0:4])
		month, _ := strconv.Atoi(date[5:7])
		day, _ := strconv.Atoi(date[8:10])
		if year < 1980 || year > 2009 || month < 1 || month > 12 || day < 1 || day > 28 {
			t.Fatalf("date %s out of range", date)
		}
	}
}

func TestSynthesize_DeterministicWithSeed(t *testing.T) {
	control := model.Control{Kind: model.KindText}
	a := New(NewRand(99))
	b := New(NewRand(99))
	for i := 0; i < 20; i++ {
		if got, want := a.Synthesize(control), b.Synthesize(control); got != want {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, got, want)
		}
	}
}

func TestPersona(t *testing.T) {
	gen := New(NewRand(2024))
	bag := gen.Persona(PersonaOptions{Year: 2026})

	for _, ft := range model.AllFieldTypes() {
		if _, ok := bag.Lookup(ft); !ok {
			t.Fatalf("persona missing %s", ft)
		}
	}

	full := bag[model.FieldTypeLastName] + " " + bag[model.FieldTypeFirstName] + " " + bag[model.FieldTypeMiddleName]
	if diff := cmp.Diff(full, bag[model.FieldTypeFullName]); diff != "" {
		t.Fatalf("full name mismatch (-want +got):\n%s", diff)
	}

	checks := map[model.FieldType]*regexp.Regexp{
		model.FieldTypePhone:       regexp.MustCompile(`^\+7 \(\d{3}\) \d{4}-\d{4}$`),
		model.FieldTypeEmail:       regexp.MustCompile(`^[a-z]+\d{1,4}@temp\.atv\.local$`),
		model.FieldTypeDateOfBirth: regexp.MustCompile(`^\d{2}\.\d{2}\.(19[7-9]\d|200\d)$`),
		model.FieldTypePassport:    regexp.MustCompile(`^\d{4} \d{6}$`),
		model.FieldTypePostalCode:  regexp.MustCompile(`^\d{6}$`),
		model.FieldTypeAddress:     regexp.MustCompile(`^г\. .+, ул\. .+, д\. \d+, кв\. \d+$`),
	}
	for ft, pattern := range checks {
		if !pattern.MatchString(bag[ft]) {
			t.Fatalf("%s = %q does not match %s", ft, bag[ft], pattern)
		}
	}

	year, _ := strconv.Atoi(bag[model.FieldTypeDateOfBirth][6:])
	if got, want := bag[model.FieldTypeAge], strconv.Itoa(2026-year); got != want {
		t.Fatalf("age %s does not agree with birth year %d", got, year)
	}
}

func TestPersona_EmailOverrides(t *testing.T) {
	gen := New(NewRand(1))
	bag := gen.Persona(PersonaOptions{Email: "abc123@mail.test"})
	if bag[model.FieldTypeEmail] != "abc123@mail.test" {
		t.Fatalf("expected explicit email, got %q", bag[model.FieldTypeEmail])
	}
	bag = gen.Persona(PersonaOptions{Domain: "example.org"})
	if !regexp.MustCompile(`@example\.org$`).MatchString(bag[model.FieldTypeEmail]) {
		t.Fatalf("expected domain override, got %q", bag[model.FieldTypeEmail])
	}
}
