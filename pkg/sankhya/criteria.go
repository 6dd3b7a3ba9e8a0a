package sankhya

import (
	"strconv"
	"strings"
	"time"
)

// Criteria is a rendered loadRecords criteria expression. Build it with the
// helpers below rather than by concatenating caller input.
type Criteria string

// String returns the expression text.
func (c Criteria) String() string { return string(c) }

const sankhyaDate = "02/01/2006"

// quote renders s as a single-quoted literal with embedded quotes doubled.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Eq renders FIELD = 'value'.
func Eq(field, value string) Criteria {
	return Criteria(field + " = " + quote(value))
}

// EqInt renders FIELD = n.
func EqInt(field string, n int64) Criteria {
	return Criteria(field + " = " + strconv.FormatInt(n, 10))
}

// Between renders FIELD BETWEEN 'DD/MM/YYYY' AND 'DD/MM/YYYY'.
func Between(field string, from, to time.Time) Criteria {
	return Criteria(field + " BETWEEN " + quote(from.Format(sankhyaDate)) + " AND " + quote(to.Format(sankhyaDate)))
}

// BetweenDates is Between with explicit TO_DATE conversion, for columns the
// gateway does not coerce from text.
func BetweenDates(field string, from, to time.Time) Criteria {
	return Criteria(field + " BETWEEN " + toDate(from) + " AND " + toDate(to))
}

func toDate(t time.Time) string {
	return "TO_DATE(" + quote(t.Format(sankhyaDate)) + ", 'DD/MM/YYYY')"
}

// IsNull renders FIELD IS NULL.
func IsNull(field string) Criteria {
	return Criteria(field + " IS NULL")
}

// InInts renders FIELD IN (a,b,c) from numeric strings. Values that are not
// integers are dropped. The second result is false when nothing survives.
func InInts(field string, values []string) (Criteria, bool) {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			continue
		}
		ids = append(ids, v)
	}
	if len(ids) == 0 {
		return "", false
	}
	return Criteria(field + " IN (" + strings.Join(ids, ",") + ")"), true
}

// And joins terms with AND, skipping empty ones.
func And(terms ...Criteria) Criteria {
	return join(" AND ", terms)
}

// Or joins terms with OR inside parentheses, skipping empty ones.
func Or(terms ...Criteria) Criteria {
	c := join(" OR ", terms)
	if c == "" {
		return ""
	}
	return "(" + c + ")"
}

func join(sep string, terms []Criteria) Criteria {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			parts = append(parts, string(t))
		}
	}
	return Criteria(strings.Join(parts, sep))
}
