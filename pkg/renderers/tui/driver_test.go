package tui

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSurveyDriver_NotifyUsesThemePrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	driver := &SurveyDriver{
		Out:   &buf,
		Theme: Theme{PanelPrefix: "== ", InfoPrefix: "  ", ErrorPrefix: "! "},
	}
	ctx := context.Background()
	for _, n := range []Notice{
		{Kind: NoticePanel, Text: "Basics"},
		{Kind: NoticeInfo, Text: "Read carefully"},
		{Kind: NoticeError, Text: "Pet name is required"},
	} {
		if err := driver.Notify(ctx, n); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	want := "== Basics\n  Read carefully\n! Pet name is required\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("notices (-want +got):\n%s", diff)
	}
}

func TestSurveyDriver_NotifyCancelled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&SurveyDriver{Out: &buf}).Notify(ctx, Notice{Text: "x"}); err == nil {
		t.Fatalf("expected context error")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written, got %q", buf.String())
	}
}

func TestNew_DefaultDriverCarriesTheme(t *testing.T) {
	t.Parallel()

	theme := Theme{ErrorPrefix: "! "}
	r := New(WithTheme(theme))
	driver, ok := r.driver.(*SurveyDriver)
	if !ok {
		t.Fatalf("default driver = %T", r.driver)
	}
	if driver.Theme != theme {
		t.Fatalf("theme = %+v", driver.Theme)
	}
}

func TestSelectIndexHelpers(t *testing.T) {
	t.Parallel()

	opts := []string{"Red", "Green", "Blue"}
	if got := indicesOf(opts, []string{"Blue", "Red", "Pink"}); !cmp.Equal(got, []int{0, 2}) {
		t.Fatalf("indicesOf = %v", got)
	}
	if got := defaultsFromIndices(opts, []int{2, 5, -1}); !cmp.Equal(got, []string{"Blue"}) {
		t.Fatalf("defaultsFromIndices = %v", got)
	}
	if indexOf(opts, "Pink") != -1 {
		t.Fatalf("missing option should be -1")
	}
}
