package reconcile

import (
	"time"

	"github.com/joseph-ayodele/receipt-reconciler/internal/cache"
	"github.com/joseph-ayodele/receipt-reconciler/internal/extract"
)

// dateLayouts are tried in order when normalizing the service's date value.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate reformats a date value to YYYY-MM-DD. An unparsable value
// yields "" so the caller keeps the raw text and drops the normalized form.
func NormalizeDate(v string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// MapFields merges an extraction payload (nil when extraction failed) with
// filesystem metadata into one Record. Pure: absent payload fields become
// empty strings, never errors.
func MapFields(p *extract.Payload, meta FileMetadata, fp cache.Fingerprint, ocrErr bool) Record {
	rec := Record{
		RelativePath:     meta.RelativePath,
		Directory:        meta.Directory,
		Filename:         meta.Filename,
		ContentType:      meta.ContentType,
		FileSize:         meta.FileSize,
		ModifiedAt:       meta.ModifiedAt,
		CreatedAt:        meta.CreatedAt,
		ChangedAt:        meta.ChangedAt,
		Fingerprint:      fp.String(),
		OCRErrorOccurred: ocrErr,
	}
	if p == nil {
		return rec
	}

	rec.TotalAmount = p.TotalAmount.DataString()
	rec.TotalAmountText = p.TotalAmount.TextString()
	rec.TaxAmount = p.TaxAmount.DataString()
	rec.TaxAmountText = p.TaxAmount.TextString()
	rec.MerchantName = p.MerchantName.DataString()
	rec.MerchantNameText = p.MerchantName.TextString()
	rec.MerchantAddress = p.MerchantAddress.DataString()
	rec.MerchantAddressText = p.MerchantAddress.TextString()
	rec.Text = p.Text.TextString()

	rec.DateText = p.Date.TextString()
	if raw := p.Date.DataString(); raw != "" {
		rec.Date = NormalizeDate(raw)
	}
	return rec
}
