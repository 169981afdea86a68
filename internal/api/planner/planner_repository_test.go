package planner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var savedColumns = []string{"id", "user_id", "destination", "start_date", "end_date", "status", "total_cost", "payload", "created_at"}

func savedResult(t *testing.T) (types.ItineraryResult, []byte) {
	t.Helper()
	res := types.ItineraryResult{
		Status:      types.StatusSuccess,
		Destination: "Pune, India",
		Itinerary: map[string]types.DaySchedule{
			"day_1": {Day: 1, Items: []types.ScheduledItem{{Name: "Shaniwar Wada", StartTime: "09:00"}}},
		},
	}
	payload, err := json.Marshal(res)
	require.NoError(t, err)
	return res, payload
}

func TestRepository_SaveItinerary(t *testing.T) {
	ctx := context.Background()
	res, _ := savedResult(t)
	userID := uuid.New()

	t.Run("returns generated id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		created := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`INSERT INTO saved_itineraries`).
			WithArgs(userID, "Pune, India", "2030-03-10", "2030-03-11", "success", 4200.0, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id, created))

		got, err := NewRepository(mock, testLogger).SaveItinerary(ctx, types.SavedItinerary{
			UserID:      userID,
			Destination: "Pune, India",
			StartDate:   "2030-03-10",
			EndDate:     "2030-03-11",
			Status:      types.StatusSuccess,
			TotalCost:   4200,
			Result:      res,
		})
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, created, got.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error is wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		boom := errors.New("unique violation")
		mock.ExpectQuery(`INSERT INTO saved_itineraries`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(boom)

		_, err = NewRepository(mock, testLogger).SaveItinerary(ctx, types.SavedItinerary{UserID: userID, Result: res})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetItinerary(t *testing.T) {
	ctx := context.Background()
	res, payload := savedResult(t)
	userID, id := uuid.New(), uuid.New()
	created := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("decodes payload", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM saved_itineraries\s+WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id, userID).
			WillReturnRows(pgxmock.NewRows(savedColumns).
				AddRow(id, userID, "Pune, India", "2030-03-10", "2030-03-11", "success", 4200.0, payload, created))

		got, err := NewRepository(mock, testLogger).GetItinerary(ctx, userID, id)
		require.NoError(t, err)
		assert.Equal(t, types.StatusSuccess, got.Status)
		assert.Equal(t, "2030-03-11", got.EndDate)
		assert.Equal(t, res, got.Result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM saved_itineraries`).WithArgs(id, userID).WillReturnError(pgx.ErrNoRows)

		_, err = NewRepository(mock, testLogger).GetItinerary(ctx, userID, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestRepository_ListItineraries(t *testing.T) {
	ctx := context.Background()
	_, payload := savedResult(t)
	userID := uuid.New()
	created := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM saved_itineraries`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(userID, 5, 5).
		WillReturnRows(pgxmock.NewRows(savedColumns).
			AddRow(uuid.New(), userID, "Pune, India", "2030-03-10", "2030-03-11", "success", 4200.0, payload, created).
			AddRow(uuid.New(), userID, "Goa", "2030-04-01", "2030-04-03", "infeasible", 9100.0, payload, created))

	list, total, err := NewRepository(mock, testLogger).ListItineraries(ctx, userID, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, list, 2)
	assert.Equal(t, types.StatusInfeasible, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
