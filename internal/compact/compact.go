// Package compact encodes query results for inclusion in an explanation prompt.
//
// A result with at most one row is passed through as a JSON array of records.
// Larger results are re-encoded as a header naming the columns once, followed
// by one CSV line per row. Line breaks inside a cell are written as the
// two-character escapes \n and \r so every row stays on one line.
package compact

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sqlask/internal/dbexec"
)

// Compacted reports whether Encode re-encodes res.
func Compacted(res dbexec.Result) bool {
	return res.Len() > 1
}

// Encode renders res as prompt text.
func Encode(res dbexec.Result) (string, error) {
	if !Compacted(res) {
		return encodeRecords(res)
	}
	return encodeTable(res)
}

func encodeRecords(res dbexec.Result) (string, error) {
	b, err := json.Marshal(res.Records())
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(b), nil
}

var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`)

func encodeTable(res dbexec.Result) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "rows[%d]{%s}:", res.Len(), strings.Join(res.Columns, ","))
	if res.Truncated {
		buf.WriteString(" (truncated)")
	}
	buf.WriteByte('\n')

	var line bytes.Buffer
	w := csv.NewWriter(&line)
	record := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = lineBreaks.Replace(dbexec.FormatValue(row[i]))
			}
		}
		line.Reset()
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("encode row: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("encode row: %w", err)
		}
		buf.WriteString("  ")
		buf.Write(line.Bytes())
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
