package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/joseph-ayodele/receipt-reconciler/internal/common"
)

// SourceRecord is one input row: the receipt path relative to the source
// directory plus any passthrough columns the scanner tool emitted.
type SourceRecord struct {
	SourceFile string
	Fields     map[string]string
}

// ReadRecords parses a headered CSV of scanned receipt rows. The SourceFile
// column is required; all other columns ride along untouched. A malformed
// table is fatal to the run, so errors here are not softened.
func ReadRecords(path string) ([]SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewAppError("INPUT_OPEN", path, err)
	}
	defer f.Close()

	return parseRecords(f, path)
}

func parseRecords(r io.Reader, name string) ([]SourceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, common.NewAppError("INPUT_HEADER", name, err)
	}

	sourceCol := -1
	for i, h := range header {
		if h == "SourceFile" {
			sourceCol = i
			break
		}
	}
	if sourceCol == -1 {
		return nil, common.NewAppError("INPUT_HEADER",
			fmt.Sprintf("%s: missing SourceFile column", name), common.ErrInvalidInput)
	}

	var out []SourceRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewAppError("INPUT_ROW", name, err)
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		out = append(out, SourceRecord{
			SourceFile: row[sourceCol],
			Fields:     fields,
		})
	}
	return out, nil
}
