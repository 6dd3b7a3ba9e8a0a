package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ISODate is the wire layout for DateRange bounds.
const ISODate = "2006-01-02"

// DefaultRangeDays is the look-back window used when no range is supplied.
const DefaultRangeDays = 90

// DateRange is an inclusive pair of calendar dates. Bounds carry no time of
// day and no zone.
type DateRange struct {
	Start string `json:"dataInicio" yaml:"dataInicio"`
	End   string `json:"dataFim" yaml:"dataFim"`
}

// NewDateRange validates ISO start/end dates.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(ISODate, start)
	if err != nil {
		return DateRange{}, eris.Wrapf(err, "model: invalid start date %q", start)
	}
	e, err := time.Parse(ISODate, end)
	if err != nil {
		return DateRange{}, eris.Wrapf(err, "model: invalid end date %q", end)
	}
	if e.Before(s) {
		return DateRange{}, eris.Errorf("model: end date %s is before start date %s", end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

// DefaultDateRange returns [now-days, now] in now's calendar.
func DefaultDateRange(now time.Time, days int) DateRange {
	if days <= 0 {
		days = DefaultRangeDays
	}
	return DateRange{
		Start: now.AddDate(0, 0, -days).Format(ISODate),
		End:   now.Format(ISODate),
	}
}

// Bounds returns the start and end as midnight UTC times.
func (r DateRange) Bounds() (time.Time, time.Time, error) {
	s, err := time.Parse(ISODate, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "model: invalid start date %q", r.Start)
	}
	e, err := time.Parse(ISODate, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "model: invalid end date %q", r.End)
	}
	return s, e, nil
}

// SankhyaStart renders Start as DD/MM/YYYY; empty if Start is malformed.
func (r DateRange) SankhyaStart() string { return toSankhya(r.Start) }

// SankhyaEnd renders End as DD/MM/YYYY; empty if End is malformed.
func (r DateRange) SankhyaEnd() string { return toSankhya(r.End) }

func toSankhya(iso string) string {
	t, err := time.Parse(ISODate, iso)
	if err != nil {
		return ""
	}
	return t.Format("02/01/2006")
}
