package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-reconciler/internal/common"
)

// HTTPClient implements Extractor against an HTTP extraction endpoint:
// multipart upload of the file bytes plus filename and content type,
// authenticated with a static API key header. One attempt per call: the
// service bills per upload, so retries are the caller's decision, never ours.
type HTTPClient struct {
	cfg    common.ExtractConfig
	client *http.Client
	log    *slog.Logger
}

func NewHTTPClient(cfg common.ExtractConfig, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger,
	}
}

// Extract uploads one file and returns the raw payload JSON. The response
// is schema-validated before being returned, so a success here is safe to
// cache.
func (c *HTTPClient) Extract(ctx context.Context, req ExtractRequest) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Filename))
		hdr.Set("Content-Type", req.ContentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("apikey", c.cfg.APIKey)

	c.log.Info("extract.http.request",
		"req_id", reqID,
		"filename", req.Filename,
		"content_type", req.ContentType,
	)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Error("extract.http.send_error",
			"req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError("EXTRACT_TRANSPORT", req.Filename, err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.log.Warn("extract.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("extract.http.read_error",
			"req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError("EXTRACT_TRANSPORT", req.Filename, err)
	}

	c.log.Info("extract.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, common.NewAppError("EXTRACT_STATUS",
			fmt.Sprintf("non-2xx status: %d", resp.StatusCode), common.ErrExtraction)
	}

	if err := ValidatePayload(raw); err != nil {
		c.log.Error("extract.http.malformed_payload",
			"req_id", reqID, "error", err, "raw_bytes", len(raw))
		return nil, common.NewAppError("EXTRACT_MALFORMED", req.Filename, err)
	}
	return raw, nil
}
