package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload([]byte(`{
		"totalAmount": {"data": 12.5, "text": "$12.50"},
		"merchantName": {"data": "Cafe", "text": "CAFE"},
		"confidenceLevel": 0.87
	}`))
	require.NoError(t, err)

	assert.Equal(t, "12.5", p.TotalAmount.DataString())
	assert.Equal(t, "$12.50", p.TotalAmount.TextString())
	assert.Equal(t, "Cafe", p.MerchantName.DataString(), "quoted strings are unquoted")
	assert.Nil(t, p.Date)
	assert.Empty(t, p.Date.DataString(), "absent fields read as empty, not panic")
	assert.Empty(t, p.Date.TextString())
}

func TestDecodePayload_Invalid(t *testing.T) {
	_, err := DecodePayload([]byte(`{"totalAmount":`))
	assert.Error(t, err)
}

func TestCompiledPayloadSchema_Reused(t *testing.T) {
	first, err := compiledPayloadSchema()
	require.NoError(t, err)
	second, err := compiledPayloadSchema()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty object", `{}`, false},
		{"well formed", `{"totalAmount":{"data":12.5,"text":"$12.50"}}`, false},
		{"extra top-level keys allowed", `{"location":{"city":"x"},"text":{"text":"t"}}`, false},
		{"field not an object", `{"date":"2020-01-02"}`, true},
		{"text not a string", `{"text":{"text":42}}`, true},
		{"not json", `hello`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
