package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts string or numeric ids.
func (id *FieldID) UnmarshalJSON(data []byte) error {
	text, err := decodeText(data)
	if err != nil {
		return fmt.Errorf("schema: field id: %w", err)
	}
	*id = FieldID(text)
	return nil
}

// UnmarshalJSON accepts string or numeric references.
func (id *SourceID) UnmarshalJSON(data []byte) error {
	text, err := decodeText(data)
	if err != nil {
		return fmt.Errorf("schema: source id: %w", err)
	}
	*id = SourceID(text)
	return nil
}

// decodeText turns a JSON scalar into its canonical string form. null decodes
// to the empty string; numbers and booleans keep their literal spelling.
func decodeText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case '{', '[':
		return "", fmt.Errorf("expected scalar, got %s", trimmed[:1])
	default:
		return string(trimmed), nil
	}
}

// flexText is a scalar that may arrive as a string, number or boolean.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	text, err := decodeText(data)
	if err != nil {
		return err
	}
	*t = flexText(text)
	return nil
}

// flexBool accepts true/false, "true"/"false" and 0/1.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	text, err := decodeText(data)
	if err != nil {
		return err
	}
	if text == "" {
		*b = false
		return nil
	}
	parsed, err := strconv.ParseBool(strings.ToLower(text))
	if err != nil {
		return fmt.Errorf("invalid boolean %q", text)
	}
	*b = flexBool(parsed)
	return nil
}

// flexList accepts a JSON array of scalars or a delimited string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			text, err := decodeText(item)
			if err != nil {
				return err
			}
			if text != "" {
				out = append(out, text)
			}
		}
		*l = out
		return nil
	}
	text, err := decodeText(trimmed)
	if err != nil {
		return err
	}
	*l = SplitOptions(text)
	return nil
}

type wireField struct {
	ID             FieldID         `json:"id"`
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	DisplayLabel   string          `json:"displayLabel"`
	Type           string          `json:"type"`
	IsMandatory    flexBool        `json:"isMandatory"`
	ParentID       FieldID         `json:"parentId"`
	Settings       *wireSettings   `json:"settings"`
	ValidationJSON json.RawMessage `json:"validationJson"`
}

type wireSettings struct {
	General        General         `json:"general"`
	Validation     wireValidation  `json:"validation"`
	Specific       json.RawMessage `json:"specific"`
	LookupSettings wireLookup      `json:"lookupSettings"`
}

type wireValidation struct {
	FieldRule            string   `json:"fieldRule"`
	ContentRule          string   `json:"contentRule"`
	EnableSettings       []Rule   `json:"enableSettings"`
	MandatorySettings    []Rule   `json:"mandatorySettings"`
	VerificationRequired flexBool `json:"verificationRequired"`
	Minimum              flexText `json:"minimum"`
	Maximum              flexText `json:"maximum"`
}

type wireLookup struct {
	ColumnName      flexText `json:"columnName"`
	ColumnNameInAPI flexList `json:"columnNameInAPI"`
	HubLinkID       SourceID `json:"hubLinkId"`
}

type wireSpecific struct {
	CustomDefaultValue     flexText        `json:"customDefaultValue"`
	DefaultValue           string          `json:"defaultValue"`
	OptionsType            string          `json:"optionsType"`
	CustomOptions          flexList        `json:"customOptions"`
	WFormID                SourceID        `json:"wFormId"`
	MasterFormID           SourceID        `json:"masterFormId"`
	MasterFormColumn       flexText        `json:"masterFormColumn"`
	MasterFormParentColumn FieldID         `json:"masterFormParentColumn"`
	RepositoryID           SourceID        `json:"repositoryId"`
	RepositoryField        flexText        `json:"repositoryField"`
	RepositoryFieldParent  FieldID         `json:"repositoryFieldParent"`
	PredefinedTable        string          `json:"predefinedTable"`
	ParentOptionField      FieldID         `json:"parentOptionField"`
	ParentDateField        FieldID         `json:"parentDateField"`
	AllowedCurrencies      flexList        `json:"allowedCurrencies"`
	CurrencyOptions        flexList        `json:"specificCurrencyOptions"`
	TextContent            string          `json:"textContent"`
	TableColumns           json.RawMessage `json:"tableColumns"`
}

// UnmarshalJSON decodes the settings bag into the typed partitions and picks
// the Specific variant from the field type. Legacy definitions without a
// settings object fall back to the validationJson string.
func (f *Field) UnmarshalJSON(data []byte) error {
	var wire wireField
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("schema: decode field: %w", err)
	}

	settings := wire.Settings
	if settings == nil {
		legacy, err := decodeLegacySettings(wire.ValidationJSON)
		if err != nil {
			return fmt.Errorf("schema: decode field %s: %w", wire.ID, err)
		}
		settings = legacy
	}

	field := Field{
		ID:           wire.ID,
		Name:         strings.TrimSpace(wire.Name),
		Label:        strings.TrimSpace(wire.Label),
		DisplayLabel: strings.TrimSpace(wire.DisplayLabel),
		Type:         ParseFieldType(wire.Type),
		Mandatory:    bool(wire.IsMandatory),
	}
	if !wire.ParentID.Empty() {
		field.ParentID = wire.ParentID
	}
	if field.Label == "" && wire.Settings == nil {
		field.Label = field.Name
	}

	if settings != nil {
		field.General = settings.General
		field.General.Visibility = VisibilityMode(strings.ToUpper(strings.TrimSpace(string(settings.General.Visibility))))
		field.Validation = Validation{
			FieldRule:            FieldRule(strings.ToUpper(strings.TrimSpace(settings.Validation.FieldRule))),
			ContentRule:          ContentRule(strings.ToUpper(strings.TrimSpace(settings.Validation.ContentRule))),
			EnableSettings:       settings.Validation.EnableSettings,
			MandatorySettings:    settings.Validation.MandatorySettings,
			VerificationRequired: bool(settings.Validation.VerificationRequired),
			Minimum:              string(settings.Validation.Minimum),
			Maximum:              string(settings.Validation.Maximum),
		}
		field.Lookup = LookupSettings{
			ColumnName:      string(settings.LookupSettings.ColumnName),
			ColumnNameInAPI: []string(settings.LookupSettings.ColumnNameInAPI),
			HubLinkID:       settings.LookupSettings.HubLinkID,
		}
	}
	if field.Validation.FieldRule == "" && field.Mandatory {
		field.Validation.FieldRule = FieldRuleRequired
	}

	var raw json.RawMessage
	if settings != nil {
		raw = settings.Specific
	}
	specific, err := decodeSpecific(field.Type, raw)
	if err != nil {
		return fmt.Errorf("schema: decode field %s specific: %w", field.ID, err)
	}
	field.Specific = specific

	*f = field
	return nil
}

func decodeLegacySettings(raw json.RawMessage) (*wireSettings, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	payload := trimmed
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("validationJson: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		payload = []byte(text)
	}
	var settings wireSettings
	if err := json.Unmarshal(payload, &settings); err != nil {
		// Malformed legacy blobs are ignored, the field keeps its top-level data.
		return nil, nil
	}
	return &settings, nil
}

func decodeSpecific(kind FieldType, raw json.RawMessage) (Specific, error) {
	var wire wireSpecific
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, err
		}
	}

	defaults := Defaults{
		Literal:   string(wire.CustomDefaultValue),
		Directive: DefaultDirective(strings.ToUpper(strings.TrimSpace(wire.DefaultValue))),
	}

	switch kind {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeURL, FieldTypeNumber, FieldTypeCalculated:
		return TextSpec{Defaults: defaults}, nil
	case FieldTypePhone:
		return PhoneSpec{Defaults: defaults}, nil
	case FieldTypeCurrency:
		allowed := []string(wire.CurrencyOptions)
		if len(allowed) == 0 {
			allowed = []string(wire.AllowedCurrencies)
		}
		return CurrencySpec{Defaults: defaults, AllowedCurrencies: allowed}, nil
	case FieldTypeDate, FieldTypeTime:
		spec := DateTimeSpec{Defaults: defaults}
		if !wire.ParentDateField.Empty() {
			spec.ParentDateField = wire.ParentDateField
		}
		return spec, nil
	case FieldTypeSingleSel, FieldTypeMultiSel, FieldTypeSingleCh, FieldTypeMultiCh:
		spec := OptionSpec{
			Defaults:         defaults,
			OptionsType:      OptionsType(strings.ToUpper(strings.TrimSpace(wire.OptionsType))),
			CustomOptions:    []string(wire.CustomOptions),
			WFormID:          wire.WFormID,
			MasterFormID:     wire.MasterFormID,
			MasterFormColumn: string(wire.MasterFormColumn),
			RepositoryID:     wire.RepositoryID,
			RepositoryField:  string(wire.RepositoryField),
			PredefinedTable:  strings.TrimSpace(wire.PredefinedTable),
		}
		if !wire.MasterFormParentColumn.Empty() {
			spec.MasterFormParentColumn = wire.MasterFormParentColumn
		}
		if !wire.RepositoryFieldParent.Empty() {
			spec.RepositoryFieldParent = wire.RepositoryFieldParent
		}
		if !wire.ParentOptionField.Empty() {
			spec.ParentOptionField = wire.ParentOptionField
		}
		return spec, nil
	case FieldTypeTable:
		columns, err := decodeColumns(wire.TableColumns)
		if err != nil {
			return nil, err
		}
		return TableSpec{Columns: columns}, nil
	case FieldTypeParagraph:
		return ParagraphSpec{TextContent: wire.TextContent}, nil
	default:
		return StaticSpec{}, nil
	}
}

// decodeColumns accepts either a bare array or {"columns": [...]}.
func decodeColumns(raw json.RawMessage) ([]Field, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var wrapped struct {
			Columns []Field `json:"columns"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("table columns: %w", err)
		}
		return wrapped.Columns, nil
	}
	var columns []Field
	if err := json.Unmarshal(trimmed, &columns); err != nil {
		return nil, fmt.Errorf("table columns: %w", err)
	}
	return columns, nil
}

type wirePanel struct {
	ID          flexText `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Settings    struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"settings"`
	Fields []Field `json:"fields"`
}

// UnmarshalJSON reads the panel title and description from settings, falling
// back to top-level keys.
func (p *Panel) UnmarshalJSON(data []byte) error {
	var wire wirePanel
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("schema: decode panel: %w", err)
	}
	panel := Panel{
		ID:          string(wire.ID),
		Title:       strings.TrimSpace(wire.Settings.Title),
		Description: strings.TrimSpace(wire.Settings.Description),
		Fields:      wire.Fields,
	}
	if panel.Title == "" {
		panel.Title = strings.TrimSpace(wire.Title)
	}
	if panel.Description == "" {
		panel.Description = strings.TrimSpace(wire.Description)
	}
	*p = panel
	return nil
}
