package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEaster(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{2024, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{2025, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
		{2026, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)},
		{2030, time.Date(2030, 4, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Easter(tt.year), "easter %d", tt.year)
	}
}

func TestIsNationalHoliday(t *testing.T) {
	holidays := []time.Time{
		time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),   // Confraternização
		time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),   // Carnaval (Easter - 47)
		time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC),  // Sexta-feira Santa
		time.Date(2025, 4, 21, 10, 0, 0, 0, time.UTC),  // Tiradentes
		time.Date(2025, 6, 19, 10, 0, 0, 0, time.UTC),  // Corpus Christi (Easter + 60)
		time.Date(2025, 9, 7, 10, 0, 0, 0, time.UTC),   // Independência
		time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC), // Proclamação
		time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC), // Natal
	}
	for _, day := range holidays {
		assert.True(t, IsNationalHoliday(day), "%s should be a holiday", day.Format("2006-01-02"))
	}

	workdays := []time.Time{
		time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),  // Ash Wednesday, not a national holiday
		time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC), // day before Corpus Christi
		time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC),
	}
	for _, day := range workdays {
		assert.False(t, IsNationalHoliday(day), "%s should not be a holiday", day.Format("2006-01-02"))
	}
}

func touSchedule() *Schedule {
	return &Schedule{
		Concessionaire: "cemig",
		Windows: []Window{
			{Position: 0, Band: BandPonta, WeekdayMask: Weekdays, StartMinute: 17 * 60, EndMinute: 20 * 60},
			{Position: 1, Band: BandIrrigante, WeekdayMask: WeekdayMaskFor(
				time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
			), StartMinute: 21*60 + 30, EndMinute: 6 * 60, OnHolidays: true},
		},
	}
}

func TestClassify(t *testing.T) {
	sched := touSchedule()

	tests := []struct {
		name string
		at   time.Time
		want Band
	}{
		{
			name: "weekday peak",
			at:   time.Date(2025, 6, 4, 18, 0, 0, 0, time.UTC), // Wednesday
			want: BandPonta,
		},
		{
			name: "weekday off peak",
			at:   time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC),
			want: BandForaPonta,
		},
		{
			name: "peak boundary start is inclusive",
			at:   time.Date(2025, 6, 4, 17, 0, 0, 0, time.UTC),
			want: BandPonta,
		},
		{
			name: "peak boundary end is exclusive",
			at:   time.Date(2025, 6, 4, 20, 0, 0, 0, time.UTC),
			want: BandForaPonta,
		},
		{
			name: "irrigation window wraps past midnight",
			at:   time.Date(2025, 6, 5, 2, 0, 0, 0, time.UTC),
			want: BandIrrigante,
		},
		{
			name: "saturday evening is not peak",
			at:   time.Date(2025, 6, 7, 18, 0, 0, 0, time.UTC),
			want: BandForaPonta,
		},
		{
			name: "holiday suppresses weekday peak",
			// Corpus Christi 2025 falls on a Thursday.
			at:   time.Date(2025, 6, 19, 18, 0, 0, 0, time.UTC),
			want: BandForaPonta,
		},
		{
			name: "holiday keeps holiday-applicable windows",
			at:   time.Date(2025, 6, 19, 23, 0, 0, 0, time.UTC),
			want: BandIrrigante,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(sched, tt.at))
		})
	}
}

func TestClassify_ScheduleTimezone(t *testing.T) {
	sched := touSchedule()
	sched.Timezone = "America/Sao_Paulo"

	// 21:00 UTC is 18:00 in Sao Paulo (UTC-3), inside the peak window.
	at := time.Date(2025, 6, 4, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, BandPonta, Classify(sched, at))

	// An unknown zone classifies the timestamp as given.
	bad := touSchedule()
	bad.Timezone = "Mars/Olympus_Mons"
	assert.Equal(t, BandForaPonta, Classify(bad, at))
}

func TestScheduleLocation(t *testing.T) {
	sched := touSchedule()
	sched.Timezone = "America/Sao_Paulo"

	loc := sched.Location()
	assert.NotNil(t, loc)
	// The lookup runs once per schedule value.
	assert.Same(t, loc, sched.Location())

	assert.Nil(t, (&Schedule{}).Location())
	assert.Nil(t, (&Schedule{Timezone: "Mars/Olympus_Mons"}).Location())
}

func TestClassify_NilAndEmpty(t *testing.T) {
	at := time.Date(2025, 6, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, BandForaPonta, Classify(nil, at))
	assert.Equal(t, BandForaPonta, Classify(&Schedule{}, at))
}
