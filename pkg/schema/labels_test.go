package schema

import (
	"strings"
	"testing"
)

func TestLabelText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field Field
		want  string
	}{
		{"display label wins", Field{DisplayLabel: "Shown", Label: "Label", Name: "name"}, "Shown"},
		{"label fallback", Field{Label: "Label", Name: "name"}, "Label"},
		{"name fallback", Field{Name: "name"}, "name"},
		{"hint prefix", Field{Label: "[HINT] - Relationship"}, "Relationship"},
		{"markup stripped", Field{Label: "<b>Terms</b> &amp; Conditions"}, "Terms & Conditions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LabelText(&tc.field); got != tc.want {
				t.Fatalf("LabelText = %q, want %q", got, tc.want)
			}
		})
	}
	if LabelText(nil) != "" {
		t.Fatalf("nil field should have no label")
	}
}

func TestIsHint(t *testing.T) {
	t.Parallel()

	if !IsHint(&Field{Label: "[HINT] - note"}) {
		t.Fatalf("expected hint")
	}
	if IsHint(&Field{Label: "note"}) || IsHint(nil) {
		t.Fatalf("unexpected hint")
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	out := SanitizeHTML("<p>Please read the <b>terms</b>.</p><script>alert(1)</script>")
	if strings.Contains(out, "script") {
		t.Fatalf("script survived sanitising: %q", out)
	}
	if !strings.Contains(out, "<b>terms</b>") {
		t.Fatalf("safe markup dropped: %q", out)
	}
	if SanitizeHTML("   ") != "" {
		t.Fatalf("blank input should stay blank")
	}
}
