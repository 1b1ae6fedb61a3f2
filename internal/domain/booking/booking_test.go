package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetails() Details {
	return Details{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		CustomerPhone: 5551234,
		Date:          time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		Time:          MustTimeOfDay(10, 0, 0),
	}
}

func TestNewBooking(t *testing.T) {
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	b := NewBooking(sampleDetails(), now)

	assert.Equal(t, int64(0), b.ID())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, now, b.CreatedAt())
	assert.Equal(t, now, b.UpdatedAt())
	assert.Equal(t, "2026-05-01 10:00:00", b.Slot().String())
}

func TestBooking_AssignIDOnce(t *testing.T) {
	b := NewBooking(sampleDetails(), time.Now())
	b.AssignID(7)
	b.AssignID(9)
	assert.Equal(t, int64(7), b.ID())
}

func TestBooking_ReplaceBumpsVersionOncePerUpdate(t *testing.T) {
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	b := NewBooking(sampleDetails(), created)

	for i := 1; i <= 3; i++ {
		d := sampleDetails()
		d.Time = MustTimeOfDay(10+i, 0, 0)
		b.Replace(d, created.Add(time.Duration(i)*time.Hour))
	}

	assert.Equal(t, int64(4), b.Version())
	assert.Equal(t, "13:00:00", b.Time().String())
	assert.Equal(t, created.Add(3*time.Hour), b.UpdatedAt())
	assert.Equal(t, created, b.CreatedAt())
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "8:05", want: "08:05:00"},
		{in: "08:05:09", want: "08:05:09"},
		{in: "08:05:09.123456", want: "08:05:09"},
		{in: "23:59:59+14:00", want: "23:59:59"},
		{in: "10:00Z", want: "10:00:00"},
		{in: "10", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "100:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateOf_UsesWallDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2026, time.June, 2, 1, 0, 0, 0, loc)
	assert.Equal(t, "2026-06-02", DateOf(ts).Format(DateLayout))
}
