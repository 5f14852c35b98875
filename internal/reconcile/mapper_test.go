package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-reconciler/internal/extract"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"rfc3339", "2020-01-02T00:00:00Z", "2020-01-02"},
		{"rfc3339 with offset", "2021-06-15T13:45:00+02:00", "2021-06-15"},
		{"naive datetime", "2019-12-31T23:59:59", "2019-12-31"},
		{"space separated", "2019-12-31 23:59:59", "2019-12-31"},
		{"date only", "2022-03-04", "2022-03-04"},
		{"unparsable", "sometime last week", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestMapFields_AllPresent(t *testing.T) {
	raw := []byte(`{
		"totalAmount": {"data": 12.5, "text": "$12.50"},
		"taxAmount": {"data": 1.15, "text": "$1.15"},
		"date": {"data": "2020-01-02T00:00:00Z", "text": "Jan 2"},
		"merchantName": {"data": "Blue Bottle", "text": "BLUE BOTTLE"},
		"merchantAddress": {"data": "1 Main St", "text": "1 MAIN ST"},
		"text": {"text": "BLUE BOTTLE\n$12.50"}
	}`)
	p, err := extract.DecodePayload(raw)
	require.NoError(t, err)

	meta := FileMetadata{
		RelativePath: "2020/a.jpg",
		Directory:    "2020",
		Filename:     "a.jpg",
		ContentType:  "image/jpeg",
		FileSize:     2048,
		ModifiedAt:   time.Date(2020, 1, 3, 10, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2020, 1, 3, 9, 0, 0, 0, time.UTC),
		ChangedAt:    time.Date(2020, 1, 3, 10, 30, 0, 0, time.UTC),
	}

	rec := MapFields(p, meta, "abc123", false)

	assert.Equal(t, "12.5", rec.TotalAmount)
	assert.Equal(t, "$12.50", rec.TotalAmountText)
	assert.Equal(t, "1.15", rec.TaxAmount)
	assert.Equal(t, "$1.15", rec.TaxAmountText)
	assert.Equal(t, "2020-01-02", rec.Date)
	assert.Equal(t, "Jan 2", rec.DateText)
	assert.Equal(t, "Blue Bottle", rec.MerchantName)
	assert.Equal(t, "BLUE BOTTLE", rec.MerchantNameText)
	assert.Equal(t, "1 Main St", rec.MerchantAddress)
	assert.Equal(t, "1 MAIN ST", rec.MerchantAddressText)
	assert.Equal(t, "BLUE BOTTLE\n$12.50", rec.Text)
	assert.Equal(t, "abc123", rec.Fingerprint)
	assert.Equal(t, "2020/a.jpg", rec.RelativePath)
	assert.Equal(t, int64(2048), rec.FileSize)
	assert.Equal(t, meta.CreatedAt, rec.CreatedAt)
	assert.Equal(t, meta.ChangedAt, rec.ChangedAt)
	assert.False(t, rec.OCRErrorOccurred)
}

func TestMapFields_AbsentFieldsAreEmpty(t *testing.T) {
	p, err := extract.DecodePayload([]byte(`{"totalAmount":{"data":3,"text":"3.00"}}`))
	require.NoError(t, err)

	rec := MapFields(p, FileMetadata{RelativePath: "a.jpg"}, "fp", false)

	assert.Equal(t, "3", rec.TotalAmount)
	assert.Empty(t, rec.TaxAmount)
	assert.Empty(t, rec.Date)
	assert.Empty(t, rec.DateText)
	assert.Empty(t, rec.MerchantName)
	assert.Empty(t, rec.Text)
}

func TestMapFields_UnparsableDateKeepsRawText(t *testing.T) {
	p, err := extract.DecodePayload([]byte(`{"date":{"data":"Jan 2nd maybe","text":"Jan 2"}}`))
	require.NoError(t, err)

	rec := MapFields(p, FileMetadata{}, "fp", false)
	assert.Empty(t, rec.Date)
	assert.Equal(t, "Jan 2", rec.DateText)
}

func TestMapFields_NilPayload(t *testing.T) {
	meta := FileMetadata{
		RelativePath: "b.jpg",
		Filename:     "b.jpg",
		ContentType:  "image/jpeg",
	}
	rec := MapFields(nil, meta, "fp", true)

	assert.True(t, rec.OCRErrorOccurred)
	assert.Equal(t, "image/jpeg", rec.ContentType, "content type comes from the extension, not the extraction")
	assert.Empty(t, rec.TotalAmount)
	assert.Empty(t, rec.Text)
}

func TestMetadataFromPath(t *testing.T) {
	m := metadataFromPath("2020/march/scan-001.pdf")
	assert.Equal(t, "2020/march", m.Directory)
	assert.Equal(t, "scan-001.pdf", m.Filename)
	assert.Equal(t, "application/pdf", m.ContentType)
}
