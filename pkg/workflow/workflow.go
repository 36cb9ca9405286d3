// Package workflow reads the session-scoped context a host keeps next to a
// form: who the user is, which workflow they are in and which fields the
// current activity hides from them.
package workflow

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Identity is the signed-in user as stored under userDetails.
type Identity struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName returns "first last" trimmed.
func (i Identity) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
}

// Empty reports whether no identity attribute is set.
func (i Identity) Empty() bool {
	return i.FullName() == "" && strings.TrimSpace(i.Email) == ""
}

// ParseIdentity decodes a userDetails blob. Malformed input yields the zero
// Identity.
func ParseIdentity(data []byte) Identity {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}
	}
	id.Email = strings.TrimSpace(id.Email)
	return id
}

// Portal carries the portal-level workflow reference.
type Portal struct {
	WorkflowID string `json:"workflowId"`
}

// ParsePortal decodes a portalDetails blob.
func ParsePortal(data []byte) Portal {
	var raw struct {
		WorkflowID schema.SourceID `json:"workflowId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Portal{}
	}
	return Portal{WorkflowID: raw.WorkflowID.String()}
}

// Session is the workflow context relevant to one activity.
type Session struct {
	ActivityID     string
	SecureControls []schema.FieldID
}

// Blocked returns the secure controls as a visibility.Blocked set.
func (s Session) Blocked() visibility.Blocked {
	return visibility.NewBlocked(s.SecureControls...)
}

type settingsBlob struct {
	FormSecureControls json.RawMessage `json:"formSecureControls"`
	SecureControls     json.RawMessage `json:"secureControls"`
}

type blockBlob struct {
	ID       schema.FieldID `json:"id"`
	Settings settingsBlob   `json:"settings"`
}

type flowBlob struct {
	Blocks []blockBlob `json:"blocks"`
}

type sessionBlob struct {
	FlowJSON           json.RawMessage `json:"flowJson"`
	Settings           settingsBlob    `json:"settings"`
	SecureControls     json.RawMessage `json:"secureControls"`
	FormSecureControls json.RawMessage `json:"formSecureControls"`
	WorkflowSession    *settingsBlob   `json:"workflowSession"`
}

// ParseSession extracts the secure controls for activityID from a workflow
// session blob.
//
// With a flowJson document (string-encoded or inline) the block whose id
// equals activityID is used, or the first block when activityID is blank; its
// settings win over the root settings. Without flowJson the lists stored at
// the root, then under workflowSession, are used. Malformed input yields an
// empty Session.
func ParseSession(data []byte, activityID string) Session {
	out := Session{ActivityID: activityID}
	var blob sessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return out
	}

	if flow, ok := decodeFlow(blob.FlowJSON); ok {
		var candidates []json.RawMessage
		if block := pickBlock(flow.Blocks, activityID); block != nil {
			candidates = append(candidates, block.Settings.FormSecureControls, block.Settings.SecureControls)
		}
		candidates = append(candidates, blob.Settings.FormSecureControls, blob.Settings.SecureControls)
		out.SecureControls = firstList(candidates...)
		return out
	}

	candidates := []json.RawMessage{blob.SecureControls, blob.FormSecureControls}
	if blob.WorkflowSession != nil {
		candidates = append(candidates, blob.WorkflowSession.SecureControls, blob.WorkflowSession.FormSecureControls)
	}
	out.SecureControls = firstList(candidates...)
	return out
}

func decodeFlow(raw json.RawMessage) (flowBlob, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return flowBlob{}, false
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || strings.TrimSpace(text) == "" {
			return flowBlob{}, false
		}
		raw = []byte(text)
	}
	var flow flowBlob
	if err := json.Unmarshal(raw, &flow); err != nil {
		return flowBlob{}, false
	}
	return flow, true
}

func pickBlock(blocks []blockBlob, activityID string) *blockBlob {
	if strings.TrimSpace(activityID) == "" {
		if len(blocks) == 0 {
			return nil
		}
		return &blocks[0]
	}
	for i := range blocks {
		if blocks[i].ID.String() == activityID {
			return &blocks[i]
		}
	}
	return nil
}

// firstList returns the first candidate that is present and decodes as a
// list of ids. A present value that is not a list ends the search with an
// empty result.
func firstList(candidates ...json.RawMessage) []schema.FieldID {
	for _, raw := range candidates {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var ids []schema.FieldID
		if err := json.Unmarshal(raw, &ids); err != nil {
			return []schema.FieldID{}
		}
		return ids
	}
	return []schema.FieldID{}
}
