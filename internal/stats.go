package lithotop

import "time"

// Summary is what the stats cards show for a machine
type Summary struct {
	TotalRecords int64
	MetricTypes  int
	LastUpdate   time.Time // zero when there are no stats
}

// Summarize totals record counts, counts metric types and finds the latest
// last_record across stats
func Summarize(stats []StatSummary) Summary {
	s := Summary{MetricTypes: len(stats)}
	for _, stat := range stats {
		s.TotalRecords += stat.RecordCount
		if stat.LastRecord.After(s.LastUpdate) {
			s.LastUpdate = stat.LastRecord
		}
	}
	return s
}

// LastUpdateString formats the last update time, or "-" when unknown
func (s Summary) LastUpdateString() string {
	if s.LastUpdate.IsZero() {
		return "-"
	}
	return s.LastUpdate.Local().Format("2006-01-02 15:04:05")
}
