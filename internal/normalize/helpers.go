package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/costmatrix/analytics-engine/internal/models"
)

// headerIndex maps a header row's cell text (trimmed, case-insensitive) to
// its column index, so sheets whose columns are reordered, padded with
// extra trailing columns, or cased/spaced differently than the canonical
// name still resolve correctly by name rather than position.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func normalizeHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// colOf resolves a header name to its column index, or -1 when the sheet
// doesn't carry that column at all (as opposed to carrying it blank).
func colOf(idx map[string]int, name string) int {
	if i, ok := idx[normalizeHeader(name)]; ok {
		return i
	}
	return -1
}

// positionalIndex assumes the header row carries no recognisable title for
// any of canonical's columns, and maps them by their documented order
// instead.
func positionalIndex(canonical []string) map[string]int {
	idx := make(map[string]int, len(canonical))
	for i, c := range canonical {
		idx[normalizeHeader(c)] = i
	}
	return idx
}

// resolveColumns builds a header-name index unless none of canonical's
// columns can be found in header at all and header carries at least as
// many cells as canonical expects — the "headers are absent but the sheet
// has the expected column count" case, where the columns are assumed to
// appear in canonical's documented order.
func resolveColumns(header []string, canonical []string) map[string]int {
	idx := headerIndex(header)
	for _, name := range canonical {
		if colOf(idx, name) >= 0 {
			return idx
		}
	}
	if len(header) >= len(canonical) {
		return positionalIndex(canonical)
	}
	return idx
}

// cell reads column at position, returning "" when the row is short (a
// trailing run of blank cells that excelize trims from the record) or the
// column is absent from the header (col < 0, per colOf).
func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func nameOrUnknown(raw string) string {
	t := trimmed(raw)
	if t == "" {
		return models.UnknownDepartment
	}
	return t
}

func isAffirmative(raw string) bool {
	t := trimmed(raw)
	return strings.Contains(t, "是") || strings.EqualFold(t, "true") || strings.EqualFold(t, "yes")
}

func parseFloatOrZero(raw string) float64 {
	t := trimmed(raw)
	if t == "" {
		return 0
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return v
}

// uuidFor derives a stable id from the row's sheet, line number and date,
// so re-reading the same workbook twice yields identical row ids rather
// than random ones — important for replace_month's delete-then-insert
// semantics to be idempotent under retries.
func uuidFor(parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
