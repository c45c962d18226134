package common

import (
	"errors"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { conn.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return NewEngine(gormDB), mock
}

func bookingRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "check_in", "check_out", "status"})
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name     string
		reqIn    time.Time
		reqOut   time.Time
		bIn      time.Time
		bOut     time.Time
		expected bool
	}{
		{
			name:  "request starts inside the booking",
			reqIn: day(2024, time.June, 4), reqOut: day(2024, time.June, 8),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
		{
			name:  "request ends inside the booking",
			reqIn: day(2024, time.May, 28), reqOut: day(2024, time.June, 2),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
		{
			name:  "booking sits inside the request",
			reqIn: day(2024, time.May, 25), reqOut: day(2024, time.June, 10),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
		{
			name:  "shared turnover day conflicts",
			reqIn: day(2024, time.June, 5), reqOut: day(2024, time.June, 8),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
		{
			name:  "request checks out on the booking check-in",
			reqIn: day(2024, time.May, 28), reqOut: day(2024, time.June, 1),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
		{
			name:  "request ends the day before",
			reqIn: day(2024, time.May, 25), reqOut: day(2024, time.May, 31),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: false,
		},
		{
			name:  "request starts the day after",
			reqIn: day(2024, time.June, 6), reqOut: day(2024, time.June, 8),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: false,
		},
		{
			name:  "identical range",
			reqIn: day(2024, time.June, 1), reqOut: day(2024, time.June, 5),
			bIn: day(2024, time.June, 1), bOut: day(2024, time.June, 5),
			expected: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RangesOverlap(tc.reqIn, tc.reqOut, tc.bIn, tc.bOut))
		})
	}
}

func TestCheckAvailabilityBadInput(t *testing.T) {
	engine, _ := newMockEngine(t)

	res := engine.CheckAvailability(0, "2024-06-01", "2024-06-05")
	assert.False(t, res.Available)
	assert.Equal(t, ErrInvalidProperty.Error(), res.Error)

	res = engine.CheckAvailability(1, "June 1, 2024", "2024-06-05")
	assert.False(t, res.Available)
	assert.Equal(t, ErrInvalidDate.Error(), res.Error)

	res = engine.CheckAvailability(1, "2024-06-01", "06/05/2024")
	assert.False(t, res.Available)
	assert.Equal(t, ErrInvalidDate.Error(), res.Error)
}

func TestCheckAvailabilityFailsClosed(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnError(errors.New("connection refused"))

	res := engine.CheckAvailability(1, "2024-06-01", "2024-06-05")
	assert.False(t, res.Available)
	assert.Equal(t, "connection refused", res.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityFreeCalendar(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(bookingRows(mock))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))

	res := engine.CheckAvailability(1, "2024-06-01", "2024-06-05")
	assert.True(t, res.Available)
	assert.Empty(t, res.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityBookingConflict(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(bookingRows(mock).
			AddRow(7, day(2024, time.June, 3), day(2024, time.June, 10), "confirmed"))

	res := engine.CheckAvailability(1, "2024-06-01", "2024-06-05")
	assert.False(t, res.Available)
	assert.Empty(t, res.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityExcludesCancelled(t *testing.T) {
	engine, mock := newMockEngine(t)
	// The query itself must exclude cancelled rows, and a cancelled row
	// slipping through must still never block the range.
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WithArgs(1, "cancelled").
		WillReturnRows(bookingRows(mock).
			AddRow(4, day(2024, time.June, 1), day(2024, time.June, 5), "cancelled"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))

	res := engine.CheckAvailability(1, "2024-06-01", "2024-06-05")
	assert.True(t, res.Available)
	assert.Empty(t, res.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityBlockedDay(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(bookingRows(mock))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))

	res := engine.CheckAvailability(1, "2024-06-01", "2024-06-05")
	assert.False(t, res.Available)
	assert.Empty(t, res.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOccupiedDates(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(bookingRows(mock).
			AddRow(1, day(2024, time.June, 1), day(2024, time.June, 3), "confirmed").
			AddRow(2, day(2024, time.June, 10), day(2024, time.June, 10), "awaiting_confirmation").
			AddRow(3, day(2024, time.June, 15), day(2024, time.June, 16), "awaiting_payment").
			AddRow(4, day(2024, time.June, 25), day(2024, time.June, 26), "cancelled"))
	mock.ExpectQuery(`SELECT .* FROM "blocked_dates"`).
		WillReturnRows(mock.NewRows([]string{"id", "property_id", "date", "reason"}).
			AddRow(1, 1, day(2024, time.June, 20), "maintenance"))

	res := engine.OccupiedDates(1)
	assert.Empty(t, res.Error)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, res.ByStatus.Confirmed)
	assert.Equal(t, []string{"2024-06-10"}, res.ByStatus.Pending)
	assert.Equal(t, []string{"2024-06-15", "2024-06-16"}, res.ByStatus.AwaitingPayment)
	assert.Equal(t, []string{"2024-06-20"}, res.Blocked)
	assert.Len(t, res.All, 7)
	assert.Contains(t, res.All, "2024-06-20")
	assert.NotContains(t, res.All, "2024-06-25")
	assert.NotContains(t, res.All, "2024-06-26")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOccupiedDatesBadProperty(t *testing.T) {
	engine, _ := newMockEngine(t)

	res := engine.OccupiedDates(0)
	assert.Equal(t, ErrInvalidProperty.Error(), res.Error)
	assert.NotNil(t, res.All)
	assert.NotNil(t, res.Blocked)
	assert.NotNil(t, res.ByStatus.Confirmed)
	assert.NotNil(t, res.ByStatus.Pending)
	assert.NotNil(t, res.ByStatus.AwaitingPayment)
}

func TestOccupiedDatesFailsClosed(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnError(errors.New("connection refused"))

	res := engine.OccupiedDates(1)
	assert.Equal(t, "connection refused", res.Error)
	assert.Empty(t, res.All)
	assert.Nil(t, mock.ExpectationsWereMet())
}
