package extract

import (
	"context"
)

// Extractor sends one receipt file to the remote extraction service and
// returns the raw payload JSON. Single attempt: no internal retry, no
// partial success. Callers decide what a failure means for their batch.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) ([]byte, error)
}

// ExtractRequest describes one upload to the extraction service.
type ExtractRequest struct {
	Path        string // local file to upload
	Filename    string // basename sent to the service
	ContentType string // declared content type of the upload
}
