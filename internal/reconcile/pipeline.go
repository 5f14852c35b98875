package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/receipt-reconciler/constants"
	"github.com/joseph-ayodele/receipt-reconciler/internal/cache"
	"github.com/joseph-ayodele/receipt-reconciler/internal/extract"
	"github.com/joseph-ayodele/receipt-reconciler/internal/input"
)

// Outcome is what the pipeline reports to the run ledger for one record.
type Outcome struct {
	RelativePath string
	Fingerprint  string
	CacheHit     bool
	Err          string
}

// RunRecorder receives per-record outcomes. Implemented by the SQLite
// ledger; nil disables recording.
type RunRecorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// Pipeline is the reconciliation orchestrator. Records are processed one at
// a time in input order, one extraction call in flight at most. The remote
// service is rate- and cost-sensitive, and strict sequencing also keeps the
// cache free of same-fingerprint write races.
type Pipeline struct {
	Cache     *cache.Store
	Extractor extract.Extractor
	Recorder  RunRecorder
	Log       *slog.Logger
}

func NewPipeline(store *cache.Store, ex extract.Extractor, rec RunRecorder, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{Cache: store, Extractor: ex, Recorder: rec, Log: log}
}

// Reconcile processes every input row against sourceDir and returns one
// Record per row, in input order. Hash and extraction failures are isolated
// per record: the row gets an error Record and the batch continues. A
// missing source directory, or a stat failure on a file that was just
// hashed, is fatal.
func (p *Pipeline) Reconcile(ctx context.Context, rows []input.SourceRecord, sourceDir string) ([]Record, Summary, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return nil, Summary{}, fmt.Errorf("source directory: %w", err)
	}

	out := make([]Record, 0, len(rows))
	var sum Summary

	for _, row := range rows {
		rec, outcome, err := p.processOne(ctx, row, sourceDir)
		if err != nil {
			return out, sum, err
		}

		sum.Total++
		switch {
		case rec.OCRErrorOccurred:
			sum.Failed++
		case outcome.CacheHit:
			sum.CacheHits++
		default:
			sum.Extracted++
		}

		if p.Recorder != nil {
			if rerr := p.Recorder.RecordOutcome(ctx, outcome); rerr != nil {
				p.Log.Warn("reconcile.ledger.record_error",
					"path", row.SourceFile, "error", rerr)
			}
		}
		out = append(out, rec)
	}

	p.Log.Info("reconcile.batch.done",
		"total", sum.Total,
		"cache_hits", sum.CacheHits,
		"extracted", sum.Extracted,
		"failed", sum.Failed,
	)
	return out, sum, nil
}

// processOne resolves one row. The returned error is fatal to the batch;
// per-record failures come back as an error Record instead.
func (p *Pipeline) processOne(ctx context.Context, row input.SourceRecord, sourceDir string) (Record, Outcome, error) {
	rel := row.SourceFile
	receiptPath := filepath.Join(sourceDir, rel)
	start := time.Now()

	fp, err := cache.FingerprintFile(receiptPath)
	if err != nil {
		p.Log.Error("reconcile.record.hash_error", "path", rel, "error", err)
		rec := MapFields(nil, metadataFromPath(rel), "", true)
		return rec, Outcome{RelativePath: rel, Err: err.Error()}, nil
	}

	payload, hit, err := p.resolvePayload(ctx, fp, receiptPath)
	outcome := Outcome{RelativePath: rel, Fingerprint: fp.String(), CacheHit: hit}
	ocrErr := false
	if err != nil {
		p.Log.Error("reconcile.record.extract_error",
			"path", rel, "fingerprint", fp.String(), "error", err)
		outcome.Err = err.Error()
		payload = nil
		ocrErr = true
	}

	// The file was readable moments ago when it was hashed, so a stat
	// failure here is not a bad record, it is a broken batch.
	meta, err := ReadFileMetadata(sourceDir, rel)
	if err != nil {
		return Record{}, outcome, err
	}

	rec := MapFields(payload, meta, fp, ocrErr)

	p.Log.Info("reconcile.record.ok",
		"path", rel,
		"fingerprint", fp.String(),
		"cache_hit", hit,
		"ocr_error", ocrErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, outcome, nil
}

// resolvePayload serves the payload from the cache, or extracts and stores
// it. A store failure degrades to re-extracting next run, never to a failed
// batch.
func (p *Pipeline) resolvePayload(ctx context.Context, fp cache.Fingerprint, receiptPath string) (*extract.Payload, bool, error) {
	if entry, ok, err := p.Cache.Lookup(fp); err != nil {
		return nil, false, err
	} else if ok {
		payload, derr := extract.DecodePayload(entry.Payload)
		if derr != nil {
			return nil, true, derr
		}
		return payload, true, nil
	}

	raw, err := p.Extractor.Extract(ctx, extract.ExtractRequest{
		Path:        receiptPath,
		Filename:    filepath.Base(receiptPath),
		ContentType: constants.ContentTypeForPath(receiptPath),
	})
	if err != nil {
		return nil, false, err
	}

	if err := p.Cache.Put(fp, raw); err != nil {
		p.Log.Warn("reconcile.cache.put_error", "fingerprint", fp.String(), "error", err)
	}

	payload, err := extract.DecodePayload(raw)
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}
