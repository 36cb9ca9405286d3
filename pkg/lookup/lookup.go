// Package lookup turns an address suggestion into values for the fields next
// to the lookup field.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/values"
)

// MinQueryLength is the shortest query that reaches the address source.
const MinQueryLength = 5

// MaxSuggestions caps the suggestions asked from the source.
const MaxSuggestions = 30

// Payload is the structured result of a selected suggestion. Raw is the
// provider record, read by explicit column mappings.
type Payload struct {
	ID         string
	City       string
	Province   string
	PostalCode string
	Raw        map[string]any
}

// Suggestion is one selectable lookup result.
type Suggestion struct {
	ID          string
	Value       string
	Label       string
	Description string
	Raw         map[string]any
}

// Suggest asks src for suggestions matching query on behalf of field. Queries
// shorter than MinQueryLength and fields without lookup settings return no
// suggestions without calling src.
func Suggest(ctx context.Context, src sources.AddressSource, field *schema.Field, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if field == nil || !field.Lookup.Capable() || len([]rune(query)) < MinQueryLength {
		return nil, nil
	}
	res, err := src.AddressSuggestions(ctx, sources.AddressQuery{
		SourceID:       field.Lookup.HubLinkID.String(),
		Query:          query,
		MaxSuggestions: MaxSuggestions,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup: suggest %s: %w", field.ID, err)
	}
	out := make([]Suggestion, 0, len(res.Items))
	for _, item := range res.Items {
		if item.ID == "" || item.Text == "" {
			continue
		}
		label := item.Text
		if item.Description != "" {
			label = item.Text + ", " + item.Description
		}
		out = append(out, Suggestion{
			ID:          item.ID,
			Value:       item.Text,
			Label:       label,
			Description: item.Description,
			Raw:         item.Raw,
		})
	}
	return out, nil
}

// PayloadFromSuggestion builds the fan-out payload of s. Address parts come
// from the raw record, falling back to the comma separated description
// "city, province, postal".
func PayloadFromSuggestion(s Suggestion) Payload {
	parts := strings.Split(s.Description, ",")
	desc := make([]string, 0, 3)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			desc = append(desc, part)
		}
	}
	at := func(i int) string {
		if i < len(desc) {
			return desc[i]
		}
		return ""
	}

	raw := s.Raw
	if raw == nil {
		raw = map[string]any{}
	}
	return Payload{
		ID:         firstNonEmpty(rawText(raw, "Id"), s.ID),
		City:       firstNonEmpty(rawText(raw, "City"), at(0)),
		Province:   firstNonEmpty(rawText(raw, "Province"), at(1)),
		PostalCode: firstNonEmpty(rawText(raw, "PostalCode"), at(2)),
		Raw:        raw,
	}
}

// FanOut computes the fills a lookup on source writes into siblings. A
// sibling with an explicit column mapping takes the mapped raw value when the
// record carries it; otherwise its label decides: labels mentioning city,
// province or postal take the matching payload part. Siblings that already
// hold a value, static fields and source itself are never filled.
func FanOut(source *schema.Field, siblings []*schema.Field, payload Payload, current values.Map) values.Map {
	fills := values.New()
	for _, sib := range siblings {
		if sib == nil || sib.Type.Static() || (source != nil && sib.ID == source.ID) {
			continue
		}
		if v, ok := current[sib.ID]; ok && !values.IsEmpty(v) {
			continue
		}
		if v, ok := mapped(sib, payload); ok {
			fills.Set(sib.ID, v)
			continue
		}
		if v := byLabel(sib, payload); v != "" {
			fills.Set(sib.ID, v)
		}
	}
	return fills
}

func mapped(sib *schema.Field, payload Payload) (string, bool) {
	key := sib.Lookup.MappedKey()
	if key == "" || payload.Raw == nil {
		return "", false
	}
	v, ok := payload.Raw[key]
	if !ok || v == nil {
		return "", false
	}
	text := values.Text(v)
	return text, text != ""
}

func byLabel(sib *schema.Field, payload Payload) string {
	label := strings.ToLower(schema.LabelText(sib))
	switch {
	case strings.Contains(label, "city"):
		return payload.City
	case strings.Contains(label, "province"):
		return payload.Province
	case strings.Contains(label, "postal"):
		return payload.PostalCode
	}
	return ""
}

func rawText(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	return values.Text(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
