package values

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Phone is the structured payload stored by PHONE_NUMBER fields.
type Phone struct {
	Code      string `json:"code"`
	PhoneNo   string `json:"phoneNo"`
	Verified  bool   `json:"verified"`
	OTPOutput string `json:"otpOutput"`
}

// Currency is the structured payload stored by CURRENCY_AMOUNT fields.
type Currency struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
	Name     string `json:"cName"`
	Flag     string `json:"flag"`
	Value    string `json:"value"`
}

// VerifiedEmail is the payload stored by email fields that require an invite.
type VerifiedEmail struct {
	Value  string `json:"value"`
	Verify bool   `json:"verify"`
}

// CurrencyOption describes a selectable currency.
type CurrencyOption struct {
	Code   string
	Symbol string
	Flag   string
	Label  string
}

// Key is the code+symbol form used in the stored payload.
func (c CurrencyOption) Key() string { return c.Code + c.Symbol }

// DefaultCurrencies is the built-in currency catalogue.
var DefaultCurrencies = []CurrencyOption{
	{Code: "CAD", Symbol: "$", Flag: "CA", Label: "Canada (CAD $)"},
	{Code: "USD", Symbol: "$", Flag: "US", Label: "United States (USD $)"},
	{Code: "EUR", Symbol: "€", Flag: "EU", Label: "Euro (EUR €)"},
	{Code: "GBP", Symbol: "£", Flag: "GB", Label: "United Kingdom (GBP £)"},
	{Code: "INR", Symbol: "₹", Flag: "IN", Label: "India (INR ₹)"},
	{Code: "AUD", Symbol: "$", Flag: "AU", Label: "Australia (AUD $)"},
}

// Currencies filters the catalogue by allowed entries (code, symbol or
// code+symbol) and sorts by label. An empty allow list keeps every currency.
func Currencies(allowed []string) []CurrencyOption {
	set := make(map[string]struct{}, len(allowed))
	for _, entry := range allowed {
		set[strings.TrimSpace(entry)] = struct{}{}
	}
	out := make([]CurrencyOption, 0, len(DefaultCurrencies))
	for _, option := range DefaultCurrencies {
		if len(set) > 0 {
			_, byCode := set[option.Code]
			_, bySymbol := set[option.Symbol]
			_, byKey := set[option.Key()]
			if !byCode && !bySymbol && !byKey {
				continue
			}
		}
		out = append(out, option)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// NewCurrency builds the stored payload for option and a raw amount.
func NewCurrency(option CurrencyOption, amount string) Currency {
	return Currency{
		Code:     option.Code,
		Symbol:   option.Symbol,
		Currency: option.Key(),
		Name:     option.Label,
		Flag:     option.Flag,
		Value:    CleanAmount(amount),
	}
}

// DecodePhone parses a stored phone payload. Plain strings are treated as a
// bare number with the default +1 code.
func DecodePhone(value any) (Phone, bool) {
	var phone Phone
	if !decodeCompound(value, &phone) {
		text := strings.TrimSpace(Text(value))
		if text == "" || strings.HasPrefix(text, "{") {
			return Phone{}, false
		}
		return Phone{Code: "+1", PhoneNo: CleanPhone(text)}, true
	}
	if phone.Code == "" {
		phone.Code = "+1"
	}
	return phone, true
}

// EncodePhone returns the JSON string stored for a phone payload.
func EncodePhone(p Phone) string {
	p.PhoneNo = CleanPhone(p.PhoneNo)
	return encodeCompound(p)
}

// DecodeCurrency parses a stored currency payload.
func DecodeCurrency(value any) (Currency, bool) {
	var currency Currency
	if !decodeCompound(value, &currency) {
		return Currency{}, false
	}
	return currency, true
}

// EncodeCurrency returns the JSON string stored for a currency payload.
func EncodeCurrency(c Currency) string {
	return encodeCompound(c)
}

// DecodeVerifiedEmail parses a verified-email payload. A plain string is an
// unverified address.
func DecodeVerifiedEmail(value any) VerifiedEmail {
	var email VerifiedEmail
	if decodeCompound(value, &email) {
		return email
	}
	text := Text(value)
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		return VerifiedEmail{}
	}
	return VerifiedEmail{Value: text}
}

// EncodeVerifiedEmail returns the JSON string stored for a verified email.
func EncodeVerifiedEmail(e VerifiedEmail) string {
	return encodeCompound(e)
}

func decodeCompound(value any, target any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		trimmed := strings.TrimSpace(typed)
		if !strings.HasPrefix(trimmed, "{") {
			return false
		}
		return json.Unmarshal([]byte(trimmed), target) == nil
	case map[string]any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return false
		}
		return json.Unmarshal(raw, target) == nil
	default:
		return false
	}
}

func encodeCompound(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

var nonDigits = regexp.MustCompile(`\D`)

// CleanPhone keeps at most ten digits.
func CleanPhone(raw string) string {
	cleaned := nonDigits.ReplaceAllString(raw, "")
	if len(cleaned) > 10 {
		cleaned = cleaned[:10]
	}
	return cleaned
}

// FormatPhone renders a cleaned number as 555-123-4567.
func FormatPhone(raw string) string {
	cleaned := CleanPhone(raw)
	switch {
	case len(cleaned) <= 3:
		return cleaned
	case len(cleaned) <= 6:
		return cleaned[:3] + "-" + cleaned[3:]
	default:
		return cleaned[:3] + "-" + cleaned[3:6] + "-" + cleaned[6:]
	}
}

var nonAmount = regexp.MustCompile(`[^0-9.]`)

// CleanAmount keeps digits and the first decimal point.
func CleanAmount(raw string) string {
	cleaned := nonAmount.ReplaceAllString(raw, "")
	intPart, decPart, found := strings.Cut(cleaned, ".")
	if !found {
		return intPart
	}
	return intPart + "." + strings.ReplaceAll(decPart, ".", "")
}

// FormatAmount inserts thousands separators into the integer part.
func FormatAmount(raw string) string {
	if raw == "" {
		return ""
	}
	intPart, decPart, hasDec := strings.Cut(raw, ".")
	intPart = collapseLeadingZeros(intPart)

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if !hasDec {
		return b.String()
	}
	return b.String() + "." + decPart
}

func collapseLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == s {
		return s
	}
	return "0" + trimmed
}

var leadingZero = regexp.MustCompile(`^0[0-9]+`)

// maxAmountDigits is the digit cap for an amount, decimals included.
const maxAmountDigits = 15

// ValidateAmount reports whether a cleaned amount is acceptable: at most fifteen
// digits and no leading zero before other integer digits.
func ValidateAmount(raw string) error {
	if raw == "" {
		return nil
	}
	if leadingZero.MatchString(raw) {
		return fmt.Errorf("amount %q has a leading zero", raw)
	}
	if digits := strings.ReplaceAll(raw, ".", ""); len(digits) > maxAmountDigits {
		return fmt.Errorf("amount %q exceeds %d digits", raw, maxAmountDigits)
	}
	return nil
}
