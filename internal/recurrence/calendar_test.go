package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekdaySet(t *testing.T) {
	assert.Equal(t, []int{0, 4}, ParseWeekdaySet("0,4"))
	assert.Equal(t, []int{0, 4}, ParseWeekdaySet(" 4 , 0 "))
	assert.Equal(t, []int{1, 4}, ParseWeekdaySet("4,1,4"), "дубликаты отбрасываются, порядок — по возрастанию")
	assert.Equal(t, []int{1}, ParseWeekdaySet("a,1,,9,-1"), "мусорные токены и значения вне 0-6 молча отбрасываются")
	assert.Empty(t, ParseWeekdaySet(""))
	assert.Empty(t, ParseWeekdaySet(" , ,x"))
}

func TestTruncateToMinute(t *testing.T) {
	zone := time.FixedZone("MSK", 3*60*60)
	instant := time.Date(2025, 6, 10, 18, 42, 37, 123456789, zone)

	truncated := TruncateToMinute(instant)

	assert.Equal(t, time.Date(2025, 6, 10, 18, 42, 0, 0, zone), truncated)
	assert.Equal(t, zone, truncated.Location(), "зона сохраняется")
}

func TestMondayIndex(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, MondayIndex(monday))
	assert.Equal(t, 6, MondayIndex(sunday))
}

func TestStepOneMonth(t *testing.T) {
	assert.Equal(t,
		time.Date(2025, 2, 28, 19, 30, 0, 0, time.UTC),
		StepOneMonth(time.Date(2025, 1, 31, 19, 30, 0, 0, time.UTC)),
		"31 января прижимается к 28 февраля в невисокосный год")

	assert.Equal(t,
		time.Date(2024, 2, 29, 19, 30, 0, 0, time.UTC),
		StepOneMonth(time.Date(2024, 1, 31, 19, 30, 0, 0, time.UTC)),
		"в високосный год — к 29 февраля")

	assert.Equal(t,
		time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC),
		StepOneMonth(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t,
		time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC),
		StepOneMonth(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)),
		"переход через декабрь")

	zone := time.FixedZone("MSK", 3*60*60)
	stepped := StepOneMonth(time.Date(2025, 5, 10, 7, 45, 0, 0, zone))
	assert.Equal(t, time.Date(2025, 6, 10, 7, 45, 0, 0, zone), stepped)
	assert.Equal(t, zone, stepped.Location())
}
