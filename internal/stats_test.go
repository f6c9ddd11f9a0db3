package lithotop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize([]StatSummary{{MetricName: "temp", RecordCount: 1, FirstRecord: last, LastRecord: last}})

	assert.Equal(t, int64(1), s.TotalRecords)
	assert.Equal(t, 1, s.MetricTypes)
	assert.True(t, last.Equal(s.LastUpdate))
	assert.NotEqual(t, "-", s.LastUpdateString())
}

func TestSummarizeLatest(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	s := Summarize([]StatSummary{
		{MetricName: "a", RecordCount: 10, LastRecord: late},
		{MetricName: "b", RecordCount: 5, LastRecord: early},
	})

	assert.Equal(t, int64(15), s.TotalRecords)
	assert.Equal(t, 2, s.MetricTypes)
	assert.True(t, late.Equal(s.LastUpdate))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalRecords)
	assert.Zero(t, s.MetricTypes)
	assert.Equal(t, "-", s.LastUpdateString())
}
