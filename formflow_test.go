package formflow_test

import (
	"strings"
	"testing"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestFacade(t *testing.T) {
	t.Parallel()

	doc, err := formflow.LoadDocument(testsupport.FixturePath("simple.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	o := formflow.NewOrchestrator(doc)
	if o.Visible("2") {
		t.Fatalf("controlled field should start hidden")
	}
	if err := o.SetValue("1", "Yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !o.Visible("2") {
		t.Fatalf("controlled field should show after trigger")
	}

	out, err := formflow.Summary(o)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Has pet: Yes") {
		t.Fatalf("summary = %q", out)
	}

	if _, err := formflow.ParseDocument([]byte(" ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}
