package summary_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/summary"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/values"
)

func answered(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	o := orchestrator.New(testsupport.ApplicationDocument(t))
	answers := []struct {
		id    schema.FieldID
		value any
	}{
		{testsupport.FieldApplicationType, "PURCHASE"},
		{testsupport.FieldFullName, "Ada Lovelace"},
		{testsupport.FieldPhone, values.EncodePhone(values.Phone{Code: "+1", PhoneNo: "5551234567"})},
		{testsupport.FieldResidenceType, "Rent"},
		{testsupport.FieldMonthlyRent, values.EncodeCurrency(values.NewCurrency(values.DefaultCurrencies[0], "1250.5"))},
		{testsupport.FieldProduct, []string{"Fixed", "Variable"}},
		{testsupport.FieldHasCoApplicant, "No"},
	}
	for _, a := range answers {
		if err := o.SetValue(a.id, a.value); err != nil {
			t.Fatalf("set %s: %v", a.id, err)
		}
	}
	if _, err := o.AddRow(testsupport.FieldPriorAddress); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if err := o.SetCell(testsupport.FieldPriorAddress, 0, testsupport.FieldRowCity, "Toronto"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	return o
}

func TestBuild(t *testing.T) {
	t.Parallel()

	got := summary.Build(answered(t))
	want := []summary.Panel{
		{Title: "Applicant", Fields: []summary.Field{
			{ID: testsupport.FieldApplicationType, Label: "Application Type", Value: "PURCHASE"},
			{ID: testsupport.FieldFullName, Label: "Full Name", Value: "Ada Lovelace"},
			{ID: testsupport.FieldPhone, Label: "Phone number", Value: "+1 555-123-4567"},
		}},
		{Title: "Co-Applicant", Fields: []summary.Field{
			{ID: testsupport.FieldHasCoApplicant, Label: "Would you like to add a co-applicant?", Value: "No"},
		}},
		{Title: "Property", Fields: []summary.Field{
			{ID: testsupport.FieldResidenceType, Label: "Residence Type", Value: "Rent"},
			{ID: testsupport.FieldMonthlyRent, Label: "Monthly Rent", Value: "$1,250.5 CAD"},
			{ID: testsupport.FieldProduct, Label: "Product", Value: "Fixed, Variable"},
			{ID: testsupport.FieldPriorAddress, Label: "Prior Residential Address", Value: "1 row(s)", Rows: []string{"Residential City: Toronto"}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := summary.Render(answered(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range []string{
		"== Applicant ==",
		"Phone number: +1 555-123-4567",
		"Monthly Rent: $1,250.5 CAD",
		"  Row 1: Residential City: Toronto",
	} {
		if !strings.Contains(out, line) {
			t.Fatalf("summary missing %q:\n%s", line, out)
		}
	}
	if strings.Contains(out, "Consent") {
		t.Fatalf("unanswered panels should be omitted:\n%s", out)
	}
}

func TestRender_CustomTemplate(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"brief.tpl": {Data: []byte(`{% for panel in panels %}{{ panel.title }}={{ panel.fields|length }};{% endfor %}`)},
	}
	out, err := summary.Render(answered(t), summary.WithTemplates(files, "brief"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Applicant=3;Co-Applicant=1;Property=4;" {
		t.Fatalf("output = %q", out)
	}

	if _, err := summary.Render(answered(t), summary.WithTemplates(files, "missing")); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	email := &schema.Field{Type: schema.FieldTypeShortText, Validation: schema.Validation{ContentRule: schema.ContentRuleEmail}}
	if got := summary.Display(email, values.EncodeVerifiedEmail(values.VerifiedEmail{Value: " a@b.co "})); got != "a@b.co" {
		t.Fatalf("email = %q", got)
	}
	num := &schema.Field{Type: schema.FieldTypeNumber}
	if got := summary.Display(num, 42.5); got != "42.5" {
		t.Fatalf("number = %q", got)
	}
}
