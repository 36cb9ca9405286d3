// Package validation checks the visible fields of a panel before the wizard
// advances. Failures are data: an Errors map keyed by field id.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/mandatory"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Messages shared with hosts that render them verbatim.
const (
	MsgEmailCollision = "Co-applicant cannot use the same email as the main applicant. Please use a separate email for the co-applicant."
	MsgSendInvite     = "Kindly Send Invite To Co-applicant"
)

var (
	emailPattern       = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)
	alphaSpacesPattern = regexp.MustCompile(`^[A-Za-z ]*$`)
	alphaDashPattern   = regexp.MustCompile(`^[A-Za-z\- ]*$`)
	coApplicantPattern = regexp.MustCompile(`(?i)co-applicant`)
)

// Errors maps field ids to one message each.
type Errors map[schema.FieldID]string

// FieldError is one entry of Errors.
type FieldError struct {
	ID      schema.FieldID
	Message string
}

// Valid reports whether no errors were recorded.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Sorted returns the entries ordered by field id.
func (e Errors) Sorted() []FieldError {
	out := make([]FieldError, 0, len(e))
	for id, msg := range e {
		out = append(out, FieldError{ID: id, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Prune drops the errors of fields vis hides and returns the number removed.
func (e Errors) Prune(vis visibility.Map) int {
	removed := 0
	for id := range e {
		if !vis.Visible(id) {
			delete(e, id)
			removed++
		}
	}
	return removed
}

// MergeMessages concatenates message lists, trimming whitespace and dropping
// blanks and duplicates while keeping the first occurrence order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)

	out := make([]string, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))
	for _, msg := range combined {
		trimmed := strings.TrimSpace(msg)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Panel validates the visible top-level fields in fields.
func Panel(fields []*schema.Field, idx *schema.Index, vals values.Map, vis visibility.Map) Errors {
	errs := Errors{}
	mainEmail := MainEmail(idx, vals)
	for _, field := range fields {
		if field == nil || field.Column() || field.Type.Static() || !vis.Visible(field.ID) {
			continue
		}
		if msg := check(field, idx, vals, vis, mainEmail); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

// Field validates one field and returns its message, or "" when valid.
func Field(field *schema.Field, idx *schema.Index, vals values.Map, vis visibility.Map) string {
	if field == nil || field.Type.Static() || !vis.Visible(field.ID) {
		return ""
	}
	return check(field, idx, vals, vis, MainEmail(idx, vals))
}

func check(field *schema.Field, idx *schema.Index, vals values.Map, vis visibility.Map, mainEmail string) string {
	value := vals[field.ID]
	label := labelOf(field)

	if field.Type == schema.FieldTypeTable {
		return checkTable(field, idx, value, mandatory.IsRequired(field.ID, vals, idx, vis))
	}
	if Empty(field, value) {
		if mandatory.IsRequired(field.ID, vals, idx, vis) {
			return RequiredMessage(field)
		}
		return ""
	}

	if field.Type == schema.FieldTypeCurrency {
		if c, ok := values.DecodeCurrency(value); ok {
			if err := values.ValidateAmount(values.CleanAmount(c.Value)); err != nil {
				return fmt.Sprintf("%s is not a valid amount", label)
			}
		}
		return ""
	}
	if field.Type != schema.FieldTypeShortText {
		return ""
	}

	switch field.Validation.ContentRule {
	case schema.ContentRuleEmail:
		email := values.DecodeVerifiedEmail(value)
		addr := strings.TrimSpace(email.Value)
		if !emailPattern.MatchString(addr) {
			return fmt.Sprintf("%s must be a valid email address", label)
		}
		if !IsCoApplicantEmail(field) {
			return ""
		}
		if mainEmail != "" && strings.EqualFold(addr, mainEmail) {
			return MsgEmailCollision
		}
		if field.Validation.VerificationRequired && !email.Verify {
			return MsgSendInvite
		}
	case schema.ContentRuleAlphaSpaces:
		if !alphaSpacesPattern.MatchString(values.Text(value)) {
			return fmt.Sprintf("%s may only contain letters and spaces", label)
		}
	case schema.ContentRuleAlphaDash:
		if !alphaDashPattern.MatchString(values.Text(value)) {
			return fmt.Sprintf("%s may only contain letters, spaces or dashes", label)
		}
	}
	return ""
}

func checkTable(field *schema.Field, idx *schema.Index, value any, required bool) string {
	rows := values.Rows(value)
	if len(rows) == 0 {
		if required {
			return RequiredMessage(field)
		}
		return ""
	}
	var msgs []string
	for i, row := range rows {
		for _, col := range idx.Columns(field.ID) {
			if !mandatory.ColumnRequired(col) {
				continue
			}
			if Empty(col, row[col.ID.String()]) {
				msgs = append(msgs, fmt.Sprintf("Row %d: %s", i+1, RequiredMessage(col)))
			}
		}
	}
	return strings.Join(MergeMessages(msgs), "; ")
}

// RequiredMessage is the message of a required field left empty.
func RequiredMessage(field *schema.Field) string {
	return labelOf(field) + " is required"
}

func labelOf(field *schema.Field) string {
	if label := schema.LabelText(field); label != "" {
		return label
	}
	return "Field"
}

// Empty reports whether value counts as unanswered for field. Compound
// payloads are empty when their meaningful part is.
func Empty(field *schema.Field, value any) bool {
	if values.IsEmpty(value) {
		return true
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	switch field.Type {
	case schema.FieldTypePhone:
		p, ok := values.DecodePhone(value)
		return !ok || strings.TrimSpace(p.PhoneNo) == ""
	case schema.FieldTypeCurrency:
		if c, ok := values.DecodeCurrency(value); ok {
			return strings.TrimSpace(c.Value) == ""
		}
	case schema.FieldTypeTable:
		return len(values.Rows(value)) == 0
	}
	if field.Validation.ContentRule == schema.ContentRuleEmail {
		return strings.TrimSpace(values.DecodeVerifiedEmail(value).Value) == ""
	}
	return false
}

// IsCoApplicantEmail reports whether field is the co-applicant's email.
func IsCoApplicantEmail(field *schema.Field) bool {
	return field != nil &&
		field.Validation.ContentRule == schema.ContentRuleEmail &&
		coApplicantPattern.MatchString(schema.LabelText(field))
}

// MainEmailField returns the main applicant's email field: an EMAIL field not
// labelled co-applicant, preferring one labelled exactly "email".
func MainEmailField(idx *schema.Index) (*schema.Field, bool) {
	var fallback *schema.Field
	for _, field := range idx.Fields() {
		if field.Validation.ContentRule != schema.ContentRuleEmail || IsCoApplicantEmail(field) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(schema.LabelText(field)), "email") {
			return field, true
		}
		if fallback == nil {
			fallback = field
		}
	}
	return fallback, fallback != nil
}

// MainEmail returns the main applicant's email address, or "".
func MainEmail(idx *schema.Index, vals values.Map) string {
	field, ok := MainEmailField(idx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(values.DecodeVerifiedEmail(vals[field.ID]).Value)
}
