package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// formatFloat formats amounts with two decimals; whole numbers are written
// without a fraction so counts such as birds stay integral.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders one report cell
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return formatInt(int64(x))
	case int64:
		return formatInt(x)
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatRow(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatCell(v)
	}
	return out
}
