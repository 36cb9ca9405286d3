package schema

import "strings"

// FieldID identifies a field inside a schema. Documents may encode ids as JSON
// numbers or strings; both decode to the same FieldID.
type FieldID string

// String implements fmt.Stringer.
func (id FieldID) String() string { return string(id) }

// Empty reports whether the id is blank or the legacy "0" top-level marker.
func (id FieldID) Empty() bool {
	trimmed := strings.TrimSpace(string(id))
	return trimmed == "" || trimmed == "0"
}

// FieldType is the closed set of field kinds a schema may declare.
type FieldType string

const (
	FieldTypeShortText  FieldType = "SHORT_TEXT"
	FieldTypeLongText   FieldType = "LONG_TEXT"
	FieldTypePhone      FieldType = "PHONE_NUMBER"
	FieldTypeDate       FieldType = "DATE"
	FieldTypeTime       FieldType = "TIME"
	FieldTypeNumber     FieldType = "NUMBER"
	FieldTypeCurrency   FieldType = "CURRENCY_AMOUNT"
	FieldTypeURL        FieldType = "URL"
	FieldTypeSingleSel  FieldType = "SINGLE_SELECT"
	FieldTypeMultiSel   FieldType = "MULTI_SELECT"
	FieldTypeSingleCh   FieldType = "SINGLE_CHOICE"
	FieldTypeMultiCh    FieldType = "MULTI_CHOICE"
	FieldTypeCalculated FieldType = "CALCULATED"
	FieldTypeDivider    FieldType = "DIVIDER"
	FieldTypeParagraph  FieldType = "PARAGRAPH"
	FieldTypeLabel      FieldType = "LABEL"
	FieldTypeTable      FieldType = "TABLE"
)

var fieldTypeAliases = map[string]FieldType{
	"CURRENCY":        FieldTypeCurrency,
	"RADIO":           FieldTypeSingleCh,
	"MULTIPLE_CHOICE": FieldTypeMultiCh,
	"CHECKBOX":        FieldTypeMultiCh,
}

// ParseFieldType normalises casing and legacy aliases.
func ParseFieldType(raw string) FieldType {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := fieldTypeAliases[upper]; ok {
		return alias
	}
	return FieldType(upper)
}

// Known reports whether the type belongs to the closed set.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeShortText, FieldTypeLongText, FieldTypePhone, FieldTypeDate,
		FieldTypeTime, FieldTypeNumber, FieldTypeCurrency, FieldTypeURL,
		FieldTypeSingleSel, FieldTypeMultiSel, FieldTypeSingleCh, FieldTypeMultiCh,
		FieldTypeCalculated, FieldTypeDivider, FieldTypeParagraph, FieldTypeLabel,
		FieldTypeTable:
		return true
	default:
		return false
	}
}

// Selectable reports whether the field offers a list of options.
func (t FieldType) Selectable() bool {
	switch t {
	case FieldTypeSingleSel, FieldTypeMultiSel, FieldTypeSingleCh, FieldTypeMultiCh:
		return true
	default:
		return false
	}
}

// Multiple reports whether the field stores a list of selections.
func (t FieldType) Multiple() bool {
	return t == FieldTypeMultiSel || t == FieldTypeMultiCh
}

// Static reports whether the field is presentational and never holds a value.
func (t FieldType) Static() bool {
	switch t {
	case FieldTypeDivider, FieldTypeParagraph, FieldTypeLabel:
		return true
	default:
		return false
	}
}

// Compound reports whether the field stores a JSON-encoded structured payload
// instead of a scalar.
func (t FieldType) Compound() bool {
	return t == FieldTypePhone || t == FieldTypeCurrency
}

// VisibilityMode is the general.visibility setting.
type VisibilityMode string

const (
	VisibilityNormal   VisibilityMode = "NORMAL"
	VisibilityReadOnly VisibilityMode = "READ_ONLY"
	VisibilityDisable  VisibilityMode = "DISABLE"
)

// FieldRule is the static requiredness of a field.
type FieldRule string

const (
	FieldRuleRequired FieldRule = "REQUIRED"
	FieldRuleOptional FieldRule = "OPTIONAL"
)

// ContentRule constrains free-text content.
type ContentRule string

const (
	ContentRuleNone        ContentRule = ""
	ContentRuleEmail       ContentRule = "EMAIL"
	ContentRuleAlphaSpaces ContentRule = "ALPHA_SPACES"
	ContentRuleAlphaDash   ContentRule = "ALPHA_DASH"
)

// GroupLogic combines rule conditions.
type GroupLogic string

const (
	GroupAll GroupLogic = "ALL"
	GroupAny GroupLogic = "ANY"
)

// ConditionLogic is the comparison applied by a rule condition.
type ConditionLogic string

const (
	LogicEquals         ConditionLogic = "IS_EQUALS_TO"
	LogicNotEquals      ConditionLogic = "IS_NOT_EQUALS_TO"
	LogicGreater        ConditionLogic = "IS_GREATER_THAN"
	LogicGreaterOrEqual ConditionLogic = "IS_GREATER_THAN_OR_EQUALS_TO"
	LogicLess           ConditionLogic = "IS_LESSER_THAN"
	LogicLessOrEqual    ConditionLogic = "IS_LESSER_THAN_OR_EQUALS_TO"
	LogicEmpty          ConditionLogic = "IS_EMPTY"
	LogicNotEmpty       ConditionLogic = "IS_NOT_EMPTY"
)

// General holds layout and presentation settings.
type General struct {
	Visibility  VisibilityMode `json:"visibility,omitempty"`
	Size        string         `json:"size,omitempty"`
	Tooltip     string         `json:"tooltip,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	DividerType string         `json:"dividerType,omitempty"`
}

// Condition is an extra predicate attached to a Rule, evaluated against the
// value of field Name.
type Condition struct {
	Name  FieldID        `json:"name"`
	Logic ConditionLogic `json:"logic"`
	Value any            `json:"value,omitempty"`
}

// Rule toggles a property (visibility or requiredness) of the Controls fields
// when the owning field's value equals Value and the optional condition group
// holds.
type Rule struct {
	Value      any         `json:"value"`
	Controls   []FieldID   `json:"controls"`
	Conditions []Condition `json:"conditions,omitempty"`
	GroupLogic GroupLogic  `json:"groupLogic,omitempty"`
}

// Logic returns the effective group logic, defaulting to ALL.
func (r Rule) Logic() GroupLogic {
	if strings.EqualFold(string(r.GroupLogic), string(GroupAny)) {
		return GroupAny
	}
	return GroupAll
}

// Targets reports whether id is one of the rule's controls.
func (r Rule) Targets(id FieldID) bool {
	for _, target := range r.Controls {
		if target == id {
			return true
		}
	}
	return false
}

// Validation holds the validation partition of the settings bag.
type Validation struct {
	FieldRule            FieldRule   `json:"fieldRule,omitempty"`
	ContentRule          ContentRule `json:"contentRule,omitempty"`
	EnableSettings       []Rule      `json:"enableSettings,omitempty"`
	MandatorySettings    []Rule      `json:"mandatorySettings,omitempty"`
	VerificationRequired bool        `json:"verificationRequired,omitempty"`
	Minimum              string      `json:"minimum,omitempty"`
	Maximum              string      `json:"maximum,omitempty"`
}

// LookupSettings configures address/lookup-capable text fields and the column
// mapping used when a sibling lookup fans out.
type LookupSettings struct {
	ColumnName      string   `json:"columnName,omitempty"`
	ColumnNameInAPI []string `json:"columnNameInAPI,omitempty"`
	HubLinkID       SourceID `json:"hubLinkId,omitempty"`
}

// Capable reports whether the field performs lookups itself.
func (l LookupSettings) Capable() bool {
	return strings.TrimSpace(l.ColumnName) != "" || len(l.ColumnNameInAPI) > 0
}

// MappedKey returns the raw-record key a sibling fill reads, if any.
func (l LookupSettings) MappedKey() string {
	if len(l.ColumnNameInAPI) == 0 {
		return ""
	}
	return strings.TrimSpace(l.ColumnNameInAPI[0])
}

// Field is one schema-declared input unit. Specific carries the type-specific
// configuration variant; see specific.go.
type Field struct {
	ID           FieldID
	Name         string
	Label        string
	DisplayLabel string
	Type         FieldType
	Mandatory    bool
	ParentID     FieldID
	PanelID      string
	General      General
	Validation   Validation
	Lookup       LookupSettings
	Specific     Specific
}

// Required reports the static requiredness of the field.
func (f *Field) Required() bool {
	if f == nil {
		return false
	}
	return strings.EqualFold(string(f.Validation.FieldRule), string(FieldRuleRequired))
}

// Disabled reports whether the field is configured as always hidden.
func (f *Field) Disabled() bool {
	return f != nil && strings.EqualFold(string(f.General.Visibility), string(VisibilityDisable))
}

// ReadOnly reports whether the field renders without accepting input.
func (f *Field) ReadOnly() bool {
	return f != nil && strings.EqualFold(string(f.General.Visibility), string(VisibilityReadOnly))
}

// Column reports whether the field lives inside a TABLE.
func (f *Field) Column() bool {
	return f != nil && !f.ParentID.Empty()
}

// Options returns the option settings for selectable fields.
func (f *Field) Options() (OptionSpec, bool) {
	if f == nil {
		return OptionSpec{}, false
	}
	spec, ok := f.Specific.(OptionSpec)
	return spec, ok
}

// Table returns the table settings for TABLE fields.
func (f *Field) Table() (TableSpec, bool) {
	if f == nil {
		return TableSpec{}, false
	}
	spec, ok := f.Specific.(TableSpec)
	return spec, ok
}

// Defaults returns the default-value directive carried by input variants.
func (f *Field) Defaults() (Defaults, bool) {
	if f == nil || f.Specific == nil {
		return Defaults{}, false
	}
	carrier, ok := f.Specific.(defaultsCarrier)
	if !ok {
		return Defaults{}, false
	}
	return carrier.defaults(), true
}

// Panel is one wizard step.
type Panel struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Document is the root schema: an ordered list of panels. Source records where
// it was loaded from and is not part of the wire format.
type Document struct {
	Panels []Panel `json:"panels"`
	Source Source  `json:"-"`
}
