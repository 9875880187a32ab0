package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultNumberFormat is used when the emitter profile does not configure
// its own numbering template.
const DefaultNumberFormat = "F-{YYYY}-{COUNTER}"

// FormatNumber renders a human-facing invoice number from a template.
// Recognized placeholders: {YYYY} (4-digit year of the issue date),
// {YY} (2-digit year) and {COUNTER} (sequence value, zero-padded to 4).
// Each placeholder is matched as an exact token, so a literal {YY} is
// unaffected by the {YYYY} substitution.
func FormatNumber(format string, issued time.Time, counter int64) string {
	year := issued.Year()

	n := strings.ReplaceAll(format, "{YYYY}", strconv.Itoa(year))
	n = strings.ReplaceAll(n, "{YY}", fmt.Sprintf("%02d", year%100))
	n = strings.ReplaceAll(n, "{COUNTER}", fmt.Sprintf("%04d", counter))

	return n
}
