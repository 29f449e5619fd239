package formfill

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/model"
)

func TestPageScriptsFSContainsDiscoverScript(t *testing.T) {
	data, err := fs.ReadFile(PageScriptsFS(), "discover.js")
	if err != nil {
		t.Fatalf("expected discover script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "querySelectorAll") {
		t.Fatalf("expected discover script to query the document")
	}
}

func TestPageScriptsFSApplyScriptTargetsRefs(t *testing.T) {
	data, err := fs.ReadFile(PageScriptsFS(), "apply.js")
	if err != nil {
		t.Fatalf("expected apply script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-formfill-ref") {
		t.Fatalf("expected apply script to locate controls by data-formfill-ref")
	}
}

func TestEmbeddedTemplatesIncludeReports(t *testing.T) {
	for _, name := range []string{"plan.txt.tpl", "plan.html.tpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s to be embedded: %v", name, err)
		}
	}
}

func TestPlanHTML(t *testing.T) {
	result, err := PlanHTML(context.Background(), `<form><input name="email"><input type="hidden" name="csrf"></form>`,
		DataBag{model.FieldTypeEmail: "a@example.test"})
	if err != nil {
		t.Fatalf("plan html: %v", err)
	}
	want := model.Summary{Success: true, FilledCount: 1, TotalEligible: 1, SkippedCount: 1}
	if diff := cmp.Diff(want, result.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if got := result.Plan.Steps[0].Action; got != model.SetText("a@example.test") {
		t.Fatalf("expected email to be set from data, got %+v", got)
	}
}

func TestPlanHTML_NoControls(t *testing.T) {
	result, err := PlanHTML(context.Background(), `<p>nothing here</p>`, nil)
	if err != nil {
		t.Fatalf("plan html: %v", err)
	}
	if !errors.Is(result.Outcome(), ErrNoFillableSurface) {
		t.Fatalf("expected ErrNoFillableSurface, got %v", result.Outcome())
	}
}

func TestLoadDictionary_EmptyDirIsDefault(t *testing.T) {
	dict, err := LoadDictionary("")
	if err != nil {
		t.Fatalf("load dictionary: %v", err)
	}
	if dict.Empty() {
		t.Fatalf("expected embedded dictionary")
	}
}
