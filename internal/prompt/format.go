package prompt

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// Currency renders v with pt-BR grouping and two decimals: 1500 -> "1.500,00".
func Currency(v float64) string {
	return brl.Sprintf("%.2f", v)
}

const (
	noDate      = "Sem data"
	invalidDate = "Data inválida"
)

// Layouts the gateway has been seen to emit for activity timestamps.
var timestampLayouts = []string{
	"02012006 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ActivityDate formats the first non-empty of primary and fallback as
// "DD/MM/YYYY, HH:MM".
func ActivityDate(primary, fallback string) string {
	raw := strings.TrimSpace(primary)
	if raw == "" {
		raw = strings.TrimSpace(fallback)
	}
	if raw == "" {
		return noDate
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006, 15:04")
		}
	}
	return invalidDate
}

// truncate keeps at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// activitySummary is the text before the first '|' of a description, which
// carries the human-written part.
func activitySummary(desc string) string {
	head, _, _ := strings.Cut(desc, "|")
	head = strings.TrimSpace(head)
	if head == "" {
		head = strings.TrimSpace(desc)
	}
	if head == "" {
		return "Sem descrição"
	}
	return truncate(head, 60)
}
