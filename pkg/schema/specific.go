package schema

import "strings"

// Specific is the type-specific configuration of a field. Each field family
// decodes into exactly one variant so invalid key combinations (for example a
// TABLE with an options source) cannot be represented.
type Specific interface {
	specific()
}

// DefaultDirective names a computed default.
type DefaultDirective string

const (
	DirectiveNone            DefaultDirective = ""
	DirectiveUserName        DefaultDirective = "USER_NAME"
	DirectiveUserEmail       DefaultDirective = "USER_EMAIL"
	DirectiveCurrentDate     DefaultDirective = "CURRENT_DATE"
	DirectiveCurrentTime     DefaultDirective = "CURRENT_TIME"
	DirectiveCurrentDateTime DefaultDirective = "CURRENT_DATE_TIME"
	DirectiveAutoGenerate    DefaultDirective = "AUTO_GENERATE"
)

// Defaults is the default-value configuration shared by input variants.
// Literal is the stringified customDefaultValue; an empty literal means none.
type Defaults struct {
	Literal   string
	Directive DefaultDirective
}

// HasLiteral reports whether a literal default is configured.
func (d Defaults) HasLiteral() bool { return d.Literal != "" }

type defaultsCarrier interface {
	defaults() Defaults
}

// OptionsType selects where a selectable field reads its choices from.
type OptionsType string

const (
	OptionsCustom     OptionsType = "CUSTOM"
	OptionsExisting   OptionsType = "EXISTING"
	OptionsMaster     OptionsType = "MASTER"
	OptionsRepository OptionsType = "REPOSITORY"
	OptionsPredefined OptionsType = "PREDEFINED"
)

// SourceID references a backend form, repository or lookup hub. Like FieldID
// it accepts numeric or string encodings.
type SourceID string

func (id SourceID) String() string { return string(id) }

// Empty reports whether the reference is blank or zero.
func (id SourceID) Empty() bool {
	trimmed := strings.TrimSpace(string(id))
	return trimmed == "" || trimmed == "0"
}

// TextSpec covers SHORT_TEXT, LONG_TEXT, URL, NUMBER and CALCULATED.
type TextSpec struct {
	Defaults Defaults
}

// PhoneSpec covers PHONE_NUMBER.
type PhoneSpec struct {
	Defaults Defaults
}

// CurrencySpec covers CURRENCY_AMOUNT.
type CurrencySpec struct {
	Defaults          Defaults
	AllowedCurrencies []string
}

// DateTimeSpec covers DATE and TIME. ParentDateField links a date to the one
// it is relative to; changing the parent resets it.
type DateTimeSpec struct {
	Defaults        Defaults
	ParentDateField FieldID
}

// OptionSpec covers the single/multi select and choice families.
type OptionSpec struct {
	Defaults               Defaults
	OptionsType            OptionsType
	CustomOptions          []string
	WFormID                SourceID
	MasterFormID           SourceID
	MasterFormColumn       string
	MasterFormParentColumn FieldID
	RepositoryID           SourceID
	RepositoryField        string
	RepositoryFieldParent  FieldID
	PredefinedTable        string
	ParentOptionField      FieldID
}

// Source returns the effective options type, defaulting to CUSTOM.
func (s OptionSpec) Source() OptionsType {
	if s.OptionsType == "" {
		return OptionsCustom
	}
	return s.OptionsType
}

// Parent returns the field whose value filters this option list, if the
// source kind supports one.
func (s OptionSpec) Parent() (FieldID, bool) {
	switch s.Source() {
	case OptionsRepository:
		if !s.RepositoryFieldParent.Empty() {
			return s.RepositoryFieldParent, true
		}
	case OptionsMaster:
		if !s.MasterFormParentColumn.Empty() {
			return s.MasterFormParentColumn, true
		}
	}
	return "", false
}

// TableSpec covers TABLE fields and owns the column definitions.
type TableSpec struct {
	Columns []Field
}

// ParagraphSpec covers PARAGRAPH. TextContent is HTML.
type ParagraphSpec struct {
	TextContent string
}

// StaticSpec covers DIVIDER, LABEL and unknown field types.
type StaticSpec struct{}

func (TextSpec) specific()      {}
func (PhoneSpec) specific()     {}
func (CurrencySpec) specific()  {}
func (DateTimeSpec) specific()  {}
func (OptionSpec) specific()    {}
func (TableSpec) specific()     {}
func (ParagraphSpec) specific() {}
func (StaticSpec) specific()    {}

func (s TextSpec) defaults() Defaults     { return s.Defaults }
func (s PhoneSpec) defaults() Defaults    { return s.Defaults }
func (s CurrencySpec) defaults() Defaults { return s.Defaults }
func (s DateTimeSpec) defaults() Defaults { return s.Defaults }
func (s OptionSpec) defaults() Defaults   { return s.Defaults }

// SplitOptions parses a delimited option string: commas when present,
// otherwise newlines. Entries are trimmed and empties dropped.
func SplitOptions(raw string) []string {
	parts := strings.Split(raw, ",")
	if len(parts) == 1 {
		parts = strings.Split(raw, "\n")
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
