package common

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newMockWorkflow(t *testing.T) (*BlockingWorkflow, sqlmock.Sqlmock) {
	t.Helper()
	engine, mock := newMockEngine(t)
	return &BlockingWorkflow{db: engine.db, engine: engine}, mock
}

func expectDayProbeFree(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(bookingRows(mock))
}

func TestBlockDate(t *testing.T) {
	t.Run("blocks a free day", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		expectDayProbeFree(mock)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		res := w.BlockDate(1, "2024-06-01", "maintenance")
		assert.True(t, res.Success)
		assert.Equal(t, 1, res.BlockedCount)
		assert.Equal(t, 1, res.TotalCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a day that is already blocked", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))

		res := w.BlockDate(1, "2024-06-01", "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrDuplicateBlock.Error(), res.Error)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a day covered by a booking", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT .* FROM "bookings"`).
			WillReturnRows(bookingRows(mock).
				AddRow(3, day(2024, time.May, 30), day(2024, time.June, 2), "confirmed"))

		res := w.BlockDate(1, "2024-06-01", "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrDateHasBooking.Error(), res.Error)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		w, _ := newMockWorkflow(t)
		res := w.BlockDate(1, "June 1", "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrInvalidDate.Error(), res.Error)
	})

	t.Run("rejects a zero property", func(t *testing.T) {
		w, _ := newMockWorkflow(t)
		res := w.BlockDate(0, "2024-06-01", "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrInvalidProperty.Error(), res.Error)
	})
}

func TestBlockDateRange(t *testing.T) {
	t.Run("blocks every day in the range", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT .* FROM "bookings"`).
			WillReturnRows(bookingRows(mock))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
		mock.ExpectCommit()

		res := w.BlockDateRange(1, "2024-06-01", "2024-06-03", "owner stay")
		assert.True(t, res.Success)
		assert.Equal(t, 3, res.BlockedCount)
		assert.Equal(t, 3, res.TotalCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects the whole range on a single conflict", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT .* FROM "bookings"`).
			WillReturnRows(bookingRows(mock).
				AddRow(9, day(2024, time.June, 2), day(2024, time.June, 4), "awaiting_confirmation"))

		res := w.BlockDateRange(1, "2024-06-01", "2024-06-03", "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrRangeConflict.Error(), res.Error)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates the availability error", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT .* FROM "bookings"`).
			WillReturnError(errors.New("connection refused"))

		res := w.BlockDateRange(1, "2024-06-01", "2024-06-03", "")
		assert.False(t, res.Success)
		assert.Equal(t, "connection refused", res.Error)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
}

func TestBlockMultipleDates(t *testing.T) {
	t.Run("drops conflicting days and reports counts", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		expectDayProbeFree(mock)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))
		expectDayProbeFree(mock)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
		mock.ExpectCommit()

		res := w.BlockMultipleDates(1, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, "")
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.BlockedCount)
		assert.Equal(t, 3, res.TotalCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("succeeds with zero inserts when every day conflicts", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "blocked_dates"`).
			WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))

		res := w.BlockMultipleDates(1, []string{"2024-06-01"}, "")
		assert.True(t, res.Success)
		assert.Equal(t, 0, res.BlockedCount)
		assert.Equal(t, 1, res.TotalCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when any date is malformed", func(t *testing.T) {
		w, _ := newMockWorkflow(t)
		res := w.BlockMultipleDates(1, []string{"2024-06-01", "garbage"}, "")
		assert.False(t, res.Success)
		assert.Equal(t, ErrInvalidDate.Error(), res.Error)
	})
}

func TestUnblockDate(t *testing.T) {
	t.Run("removes an existing block", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "blocked_dates"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		res := w.UnblockDate(1, "2024-06-01")
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.UnblockedCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("is a no-op for a day that was never blocked", func(t *testing.T) {
		w, mock := newMockWorkflow(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "blocked_dates"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		res := w.UnblockDate(1, "2024-06-01")
		assert.True(t, res.Success)
		assert.Equal(t, int64(0), res.UnblockedCount)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
}

func TestUnblockDateRange(t *testing.T) {
	w, mock := newMockWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "blocked_dates"`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	res := w.UnblockDateRange(1, "2024-06-01", "2024-06-04")
	assert.True(t, res.Success)
	assert.Equal(t, int64(4), res.UnblockedCount)
	assert.Nil(t, mock.ExpectationsWereMet())
}
