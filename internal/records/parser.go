package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/comparely/catalog-service/internal/types"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one non-blank line of a batch file. Value is nil when the line
// could not be decoded; Err then says why.
type Record[T any] struct {
	Line  int
	Raw   string
	Value *T
	Err   error
}

// Unparseable reports whether the line failed to decode into a record.
func (r Record[T]) Unparseable() bool {
	return r.Value == nil
}

type identityNormalizer interface {
	NormalizeIdentity()
}

// Parse decodes newline-delimited JSON. Every non-blank line yields exactly
// one Record; a bad line never affects its neighbours.
func Parse[T any](content []byte) []Record[T] {
	content = bytes.TrimPrefix(content, utf8BOM)
	lines := bytes.Split(content, []byte("\n"))
	out := make([]Record[T], 0, len(lines))

	for i, line := range lines {
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		line = decodeLine(line)
		rec := Record[T]{Line: i + 1, Raw: string(line)}

		var v *T
		if err := json.Unmarshal(line, &v); err != nil {
			rec.Err = fmt.Errorf("%w: line %d: %v", types.ErrInvalidRecord, i+1, err)
		} else if v == nil {
			rec.Err = fmt.Errorf("%w: line %d: null record", types.ErrInvalidRecord, i+1)
		} else {
			if n, ok := any(v).(identityNormalizer); ok {
				n.NormalizeIdentity()
			}
			rec.Value = v
		}
		out = append(out, rec)
	}
	return out
}

// Summarize counts valid and unparseable records.
func Summarize[T any](recs []Record[T]) types.ParseStats {
	stats := types.ParseStats{Lines: len(recs)}
	for _, r := range recs {
		if r.Unparseable() {
			stats.Unparseable++
		} else {
			stats.Valid++
		}
	}
	return stats
}

// decodeLine converts a line of legacy single-byte output (Windows-1250, as
// written by older scraper hosts) to UTF-8. Valid UTF-8 lines are untouched.
func decodeLine(line []byte) []byte {
	if utf8.Valid(line) {
		return line
	}
	decoded, err := charmap.Windows1250.NewDecoder().Bytes(line)
	if err != nil {
		return line
	}
	return decoded
}
