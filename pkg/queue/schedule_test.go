package queue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagecompute/jobkit/pkg/queue"
)

func TestSchedules(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		name     string
		schedule queue.Schedule
		from     time.Time
		want     time.Time
		str      string
	}{
		{
			name:     "interval",
			schedule: queue.EveryInterval(5 * time.Second),
			from:     base,
			want:     base.Add(5 * time.Second),
			str:      "every 5s",
		},
		{
			name:     "minutes",
			schedule: queue.EveryMinutes(15),
			from:     base,
			want:     base.Add(15 * time.Minute),
			str:      "every 15m0s",
		},
		{
			name:     "hourly later this hour",
			schedule: queue.HourlyAt(45),
			from:     base,
			want:     time.Date(2025, 3, 10, 14, 45, 0, 0, time.UTC),
			str:      "hourly at :45",
		},
		{
			name:     "hourly next hour",
			schedule: queue.HourlyAt(5),
			from:     base,
			want:     time.Date(2025, 3, 10, 15, 5, 0, 0, time.UTC),
			str:      "hourly at :05",
		},
		{
			name:     "hourly exactly on the minute moves on",
			schedule: queue.HourlyAt(30),
			from:     time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
			want:     time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
			str:      "hourly at :30",
		},
		{
			name:     "daily later today",
			schedule: queue.DailyAt(18, 0),
			from:     base,
			want:     time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
			str:      "daily at 18:00",
		},
		{
			name:     "daily tomorrow",
			schedule: queue.DailyAt(2, 30),
			from:     base,
			want:     time.Date(2025, 3, 11, 2, 30, 0, 0, time.UTC),
			str:      "daily at 02:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.schedule.Next(tt.from))
			assert.Equal(t, tt.str, tt.schedule.String())
		})
	}
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		in   string
		want queue.Schedule
	}{
		{"every 5s", queue.EveryInterval(5 * time.Second)},
		{"  Every   90s ", queue.EveryInterval(90 * time.Second)},
		{"every 15 minutes", queue.EveryMinutes(15)},
		{"hourly at :05", queue.HourlyAt(5)},
		{"HOURLY AT :45", queue.HourlyAt(45)},
		{"daily at 02:30", queue.DailyAt(2, 30)},
		{"daily at 18:00", queue.DailyAt(18, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := queue.ParseSchedule(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
			assert.Equal(t, tt.want.Next(base), got.Next(base))
		})
	}

	t.Run("string form round trips", func(t *testing.T) {
		t.Parallel()

		for _, s := range []queue.Schedule{
			queue.EveryInterval(5 * time.Second),
			queue.EveryMinutes(15),
			queue.HourlyAt(7),
			queue.DailyAt(23, 59),
		} {
			got, err := queue.ParseSchedule(s.String())
			require.NoError(t, err, s.String())
			assert.Equal(t, s.Next(base), got.Next(base), s.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{
			"", "soon", "every", "every 0s", "every -1m", "every many minutes", "every 0 minutes",
			"hourly at :60", "hourly at :xx", "daily at 24:00", "daily at 12:60", "daily at noon",
		} {
			_, err := queue.ParseSchedule(in)
			assert.ErrorIs(t, err, queue.ErrInvalidSchedule, "input %q", in)
		}
	})
}
