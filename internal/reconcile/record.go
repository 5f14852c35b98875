package reconcile

import "time"

// Record is one normalized output row: filesystem metadata merged with the
// extraction fields for a single input receipt. Output is 1:1 with input
// rows, in input order; a failed extraction still yields a Record with
// OCRErrorOccurred set and the extraction fields empty.
type Record struct {
	RelativePath string    `json:"relativePath"`
	Directory    string    `json:"directory"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"contentType"`
	FileSize     int64     `json:"fileSize"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	ChangedAt    time.Time `json:"changedAt,omitzero"`

	Fingerprint string `json:"fingerprint"`

	TotalAmount         string `json:"totalAmount"`
	TotalAmountText     string `json:"totalAmountText"`
	TaxAmount           string `json:"taxAmount"`
	TaxAmountText       string `json:"taxAmountText"`
	Date                string `json:"date"`
	DateText            string `json:"dateText"`
	MerchantName        string `json:"merchantName"`
	MerchantNameText    string `json:"merchantNameText"`
	MerchantAddress     string `json:"merchantAddress"`
	MerchantAddressText string `json:"merchantAddressText"`
	Text                string `json:"text"`

	OCRErrorOccurred bool `json:"ocrErrorOccurred"`
}

// Summary aggregates one batch run.
type Summary struct {
	Total     int
	CacheHits int
	Extracted int
	Failed    int
}
