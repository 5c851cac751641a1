package treemap

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatBytes renders a byte count as KiB with one decimal and English
// digit grouping, matching the report tool's display convention:
// 1234567 → "1,205.6 KiB".
func FormatBytes(n int64) string {
	return FormatBytesLocale(n, "en")
}

// FormatBytesLocale renders a byte count as KiB using the given BCP 47
// locale for digit grouping and decimal separators. Unparseable locales
// fall back to English.
func FormatBytesLocale(n int64, locale string) string {
	return printerFor(locale).Sprintf("%.1f KiB", float64(n)/1024)
}

// FormatCount renders an integer with locale-aware digit grouping, e.g.
// node counts in summaries: 12345 → "12,345".
func FormatCount(n int64) string {
	return FormatCountLocale(n, "en")
}

// FormatCountLocale is FormatCount with an explicit BCP 47 locale.
func FormatCountLocale(n int64, locale string) string {
	return printerFor(locale).Sprintf("%d", n)
}

// FormatPercent renders part over total as a percentage with one decimal.
// A zero total reports "0.0%" rather than dividing by zero - empty trees
// degrade to zero, they do not error.
func FormatPercent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return message.NewPrinter(language.English).Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func printerFor(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
