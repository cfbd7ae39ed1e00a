package executor

import (
	"fmt"
	"strings"
	"time"
)

// FormatText renders a result as the tool-facing text block: one line per
// row of "column: value" pairs joined by " | ", or a status message for
// non-tabular and empty results.
func FormatText(res *Result) string {
	switch res.Kind {
	case KindAffected:
		return fmt.Sprintf("Query executed successfully on '%s'. Rows affected: %d", res.Target, res.Affected)
	case KindEmpty:
		return fmt.Sprintf("No results found on '%s'", res.Target)
	}

	lines := make([]string, 0, len(res.Rows)+2)
	lines = append(lines, "Results:", "--------")
	for _, row := range res.Rows {
		items := make([]string, 0, len(res.Columns))
		for i, col := range res.Columns {
			items = append(items, col+": "+FormatValue(row[i]))
		}
		lines = append(lines, strings.Join(items, " | "))
	}
	return strings.Join(lines, "\n")
}

// FormatValue stringifies one cell. Byte values are decoded with replacement
// of invalid UTF-8; percent characters in stringified scalars are doubled so
// downstream format directives cannot pick them up.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return strings.ToValidUTF8(string(val), "�")
	case time.Time:
		return escapePercent(val.Format("2006-01-02 15:04:05"))
	case string:
		return escapePercent(val)
	default:
		return escapePercent(fmt.Sprint(val))
	}
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
