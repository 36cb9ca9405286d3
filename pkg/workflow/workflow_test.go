package workflow_test

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

func TestParseSession(t *testing.T) {
	t.Parallel()

	flow := `{"blocks":[
		{"id":1,"settings":{"secureControls":["143170"]}},
		{"id":"act-2","settings":{"formSecureControls":[143171,"143172"]}},
		{"id":"act-3","settings":{}}
	]}`

	cases := []struct {
		name     string
		data     string
		activity string
		want     []schema.FieldID
	}{
		{
			name: "string encoded flow, first block by default",
			data: `{"flowJson":` + strconv.Quote(flow) + `}`,
			want: []schema.FieldID{"143170"},
		},
		{
			name:     "block selected by activity",
			data:     `{"flowJson":` + strconv.Quote(flow) + `}`,
			activity: "act-2",
			want:     []schema.FieldID{"143171", "143172"},
		},
		{
			name:     "block without controls falls back to root settings",
			data:     `{"flowJson":` + flow + `,"settings":{"secureControls":["9"]}}`,
			activity: "act-3",
			want:     []schema.FieldID{"9"},
		},
		{
			name:     "unknown activity uses root settings",
			data:     `{"flowJson":` + strconv.Quote(flow) + `,"settings":{"formSecureControls":["8"]}}`,
			activity: "missing",
			want:     []schema.FieldID{"8"},
		},
		{
			name: "root list without flow",
			data: `{"secureControls":["1","2"]}`,
			want: []schema.FieldID{"1", "2"},
		},
		{
			name: "nested workflowSession",
			data: `{"workflowSession":{"formSecureControls":["3"]}}`,
			want: []schema.FieldID{"3"},
		},
		{
			name: "malformed json",
			data: `{"secureControls":`,
			want: nil,
		},
		{
			name: "non list value",
			data: `{"secureControls":"143170"}`,
			want: []schema.FieldID{},
		},
		{
			name: "malformed flowJson string falls back to root lists",
			data: `{"flowJson":"{not json","secureControls":["4"]}`,
			want: []schema.FieldID{"4"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := workflow.ParseSession([]byte(tc.data), tc.activity)
			if diff := cmp.Diff(tc.want, got.SecureControls); diff != "" {
				t.Fatalf("secure controls (-want +got):\n%s", diff)
			}
			if got.ActivityID != tc.activity {
				t.Fatalf("activity %q", got.ActivityID)
			}
		})
	}
}

func TestSessionBlocked(t *testing.T) {
	t.Parallel()

	s := workflow.ParseSession([]byte(`{"secureControls":["143170",""]}`), "")
	if !s.Blocked().Has("143170") || s.Blocked().Has("") {
		t.Fatalf("unexpected blocked set %v", s.Blocked().IDs())
	}
}

func TestParseIdentity(t *testing.T) {
	t.Parallel()

	id := workflow.ParseIdentity([]byte(`{"firstName":" Ada ","lastName":"Lovelace","email":" ada@example.com "}`))
	if id.FullName() != "Ada Lovelace" || id.Email != "ada@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if !workflow.ParseIdentity([]byte(`nope`)).Empty() {
		t.Fatalf("malformed identity should be empty")
	}
	if got := (workflow.Identity{LastName: "Solo"}).FullName(); got != "Solo" {
		t.Fatalf("FullName = %q", got)
	}
}

func TestParsePortal(t *testing.T) {
	t.Parallel()

	if got := workflow.ParsePortal([]byte(`{"workflowId":42}`)).WorkflowID; got != "42" {
		t.Fatalf("workflow id %q", got)
	}
	if got := workflow.ParsePortal([]byte(`[]`)).WorkflowID; got != "" {
		t.Fatalf("malformed portal should be empty, got %q", got)
	}
}
