package mandatory_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/mandatory"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func required(idx *schema.Index, id schema.FieldID, vals values.Map, blocked visibility.Blocked) bool {
	vis := visibility.Evaluate(idx, vals, blocked)
	return mandatory.IsRequired(id, vals, idx, vis)
}

func TestIsRequired_StaticAndHidden(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)

	if !required(idx, testsupport.FieldEmail, values.Map{}, nil) {
		t.Fatalf("static REQUIRED field should be required")
	}
	if required(idx, testsupport.FieldEmail, values.Map{}, visibility.NewBlocked(testsupport.FieldEmail)) {
		t.Fatalf("blocked field must not be required")
	}
	if required(idx, testsupport.FieldCoFirstName, values.Map{testsupport.FieldHasCoApplicant: "No"}, nil) {
		t.Fatalf("hidden REQUIRED field must not be required")
	}
	if !required(idx, testsupport.FieldCoFirstName, values.Map{testsupport.FieldHasCoApplicant: "Yes"}, nil) {
		t.Fatalf("revealed REQUIRED field should be required")
	}
	if required(idx, testsupport.FieldInternalScore, values.Map{}, nil) {
		t.Fatalf("DISABLE field must not be required")
	}
	if required(idx, "ghost", values.Map{}, nil) {
		t.Fatalf("unknown field must not be required")
	}
}

func TestIsRequired_MandatoryUpgrade(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)

	if required(idx, testsupport.FieldRelationship, values.Map{}, nil) {
		t.Fatalf("OPTIONAL field without trigger should not be required")
	}
	if required(idx, testsupport.FieldRelationship, values.Map{testsupport.FieldHasCoApplicant: "No"}, nil) {
		t.Fatalf("non-matching trigger should not upgrade")
	}
	if !required(idx, testsupport.FieldRelationship, values.Map{testsupport.FieldHasCoApplicant: "Yes"}, nil) {
		t.Fatalf("matching trigger should upgrade to required")
	}
}

func TestIsRequired_HiddenDriverDoesNotUpgrade(t *testing.T) {
	t.Parallel()

	doc := schema.MustParse([]byte(`{"panels":[{"id":"p","fields":[
		{"id":"G","type":"SINGLE_CHOICE","settings":{"validation":{"enableSettings":[{"value":"show","controls":["D"]}]}}},
		{"id":"D","type":"SINGLE_CHOICE","settings":{"validation":{"mandatorySettings":[{"value":"x","controls":["T"]}]}}},
		{"id":"T","type":"SHORT_TEXT","settings":{"validation":{"fieldRule":"OPTIONAL"}}}
	]}]}`))
	idx := schema.Flatten(doc)

	if !required(idx, "T", values.Map{"G": "show", "D": "x"}, nil) {
		t.Fatalf("visible driver with matching value should upgrade")
	}
	if required(idx, "T", values.Map{"G": "hide", "D": "x"}, nil) {
		t.Fatalf("hidden driver must not upgrade")
	}
	if required(idx, "T", values.Map{"G": "show", "D": []any{"y"}}, nil) {
		t.Fatalf("list without trigger must not upgrade")
	}
	if !required(idx, "T", values.Map{"G": "show", "D": []any{"y", "x"}}, nil) {
		t.Fatalf("list containing trigger should upgrade")
	}
}

func TestColumnRequired(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	var got []schema.FieldID
	for _, col := range idx.Columns(testsupport.FieldPriorAddress) {
		if mandatory.ColumnRequired(col) {
			got = append(got, col.ID)
		}
	}
	want := []schema.FieldID{
		testsupport.FieldRowAddress, testsupport.FieldRowCity, testsupport.FieldRowPostal, testsupport.FieldRowStart,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("READ_ONLY columns are not required (-want +got):\n%s", diff)
	}
	if mandatory.ColumnRequired(nil) {
		t.Fatalf("nil column")
	}
}

func TestRequiredSet(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	vals := values.Map{testsupport.FieldHasCoApplicant: "Yes"}
	vis := visibility.Evaluate(idx, vals, nil)

	set := mandatory.RequiredSet(idx, vals, vis)
	want := []schema.FieldID{
		testsupport.FieldApplicationType, testsupport.FieldFullName, testsupport.FieldEmail, testsupport.FieldPhone,
		testsupport.FieldHasCoApplicant, testsupport.FieldCoFirstName, testsupport.FieldCoEmail, testsupport.FieldRelationship,
		testsupport.FieldAddress, testsupport.FieldConsent,
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("required set (-want +got):\n%s", diff)
	}
}
