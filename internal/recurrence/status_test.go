package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	start := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"за минуту до начала", start.Add(-time.Minute), StatusUpcoming},
		{"ровно в момент начала", start, StatusOngoing},
		{"за минуту до конца", end.Add(-time.Minute), StatusOngoing},
		{"ровно в момент конца", end, StatusCompleted},
		{"после конца", end.Add(time.Hour), StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(start, end, tc.now))
		})
	}
}

func TestClassifyIgnoresSeconds(t *testing.T) {
	start := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusOngoing, Classify(start, end, start.Add(30*time.Second)),
		"секунды не влияют на классификацию")
	assert.Equal(t, StatusUpcoming, Classify(start, end, start.Add(-30*time.Second)),
		"17:59:30 усекается до 17:59 — ещё не началось")
}

func TestClassifyAcrossZones(t *testing.T) {
	start := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC)

	msk := time.FixedZone("MSK", 3*60*60)
	nowMSK := time.Date(2025, 6, 10, 21, 30, 0, 0, msk) // 18:30 UTC

	assert.Equal(t, StatusOngoing, Classify(start, end, nowMSK),
		"сравнение по абсолютному моменту, а не по локальным часам")
}
