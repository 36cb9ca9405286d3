package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneRoundTrip(t *testing.T) {
	t.Parallel()

	encoded := EncodePhone(Phone{Code: "+1", PhoneNo: "(555) 123-4567 ext 89"})
	assert.JSONEq(t, `{"code":"+1","phoneNo":"5551234567","verified":false,"otpOutput":""}`, encoded)

	decoded, ok := DecodePhone(encoded)
	require.True(t, ok)
	assert.Equal(t, "5551234567", decoded.PhoneNo)

	bare, ok := DecodePhone("555 1234")
	require.True(t, ok)
	assert.Equal(t, Phone{Code: "+1", PhoneNo: "5551234"}, bare)

	_, ok = DecodePhone("{broken")
	assert.False(t, ok)
	_, ok = DecodePhone(nil)
	assert.False(t, ok)
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatPhone(""))
	assert.Equal(t, "555", FormatPhone("555"))
	assert.Equal(t, "555-12", FormatPhone("55512"))
	assert.Equal(t, "555-123-4567", FormatPhone("+1 555 123 4567 99"))
}

func TestCurrency(t *testing.T) {
	t.Parallel()

	options := Currencies([]string{"CAD", "€"})
	require.Len(t, options, 2)
	assert.Equal(t, "CAD", options[0].Code)
	assert.Equal(t, "EUR", options[1].Code)
	assert.Len(t, Currencies(nil), len(DefaultCurrencies))

	payload := NewCurrency(options[0], "$1,250.50")
	assert.Equal(t, Currency{Code: "CAD", Symbol: "$", Currency: "CAD$", Name: "Canada (CAD $)", Flag: "CA", Value: "1250.50"}, payload)

	decoded, ok := DecodeCurrency(EncodeCurrency(payload))
	require.True(t, ok)
	assert.Equal(t, payload, decoded)

	fromMap, ok := DecodeCurrency(map[string]any{"code": "USD", "value": "3"})
	require.True(t, ok)
	assert.Equal(t, "3", fromMap.Value)
}

func TestAmountHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12.345", CleanAmount("1a2.3.4b5"))
	assert.Equal(t, "1,234,567.89", FormatAmount("1234567.89"))
	assert.Equal(t, "100", FormatAmount("100"))
	assert.Equal(t, "07", FormatAmount("007"))

	assert.NoError(t, ValidateAmount("0.5"))
	assert.NoError(t, ValidateAmount("0"))
	assert.Error(t, ValidateAmount("01"))
	assert.NoError(t, ValidateAmount("123456789012345"))
	assert.Error(t, ValidateAmount("1234567890123456"))
}

func TestVerifiedEmail(t *testing.T) {
	t.Parallel()

	encoded := EncodeVerifiedEmail(VerifiedEmail{Value: "a@b.co", Verify: true})
	assert.Equal(t, VerifiedEmail{Value: "a@b.co", Verify: true}, DecodeVerifiedEmail(encoded))
	assert.Equal(t, VerifiedEmail{Value: "plain@b.co"}, DecodeVerifiedEmail("plain@b.co"))
	assert.Equal(t, VerifiedEmail{}, DecodeVerifiedEmail(nil))
}
