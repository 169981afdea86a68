package places

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var placeColumns = []string{"id", "name", "address", "lat", "lng", "rating", "rating_count", "types", "price_level"}

func ptr[T any](v T) *T { return &v }

func TestRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("scans rows in order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM places p\s+JOIN cities c`).
			WithArgs("Pune", 15.0, []string{"museum"}, "", 15).
			WillReturnRows(pgxmock.NewRows(placeColumns).
				AddRow("m1", "Raja Dinkar Kelkar Museum", "Shukrawar Peth", 18.5104, 73.8567, ptr(4.6), 2100, []string{"museum", "tourist_attraction"}, ptr(1)).
				AddRow("m2", "Tribal Museum", "", 18.5300, 73.8700, ptr(4.2), 300, []string{"museum"}, ptr(0)))

		repo := NewRepository(mock, testLogger)
		got, err := repo.Search(ctx, SearchQuery{Destination: "Pune, India", Tags: []string{"museum"}, RadiusKm: 15, Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "m1", got[0].ID)
		assert.Equal(t, types.Location{Lat: 18.5104, Lng: 73.8567}, got[0].Location)
		assert.Equal(t, 4.6, *got[0].Rating)
		assert.Equal(t, 2100, got[0].RatingCount)
		assert.Equal(t, 1, *got[0].PriceLevel)
		assert.True(t, got[0].HasType("tourist_attraction"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("name search sends an empty tag array", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM places p`).
			WithArgs("Pune", 25.0, []string{}, "Shaniwar Wada", 5).
			WillReturnRows(pgxmock.NewRows(placeColumns))

		got, err := NewRepository(mock, testLogger).Search(ctx, SearchQuery{Destination: "Pune", Name: "Shaniwar Wada", RadiusKm: 25, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		boom := errors.New("connection reset")
		mock.ExpectQuery(`FROM places p`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(boom)

		_, err = NewRepository(mock, testLogger).Search(ctx, SearchQuery{Destination: "Pune", Tags: []string{"park"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCityName(t *testing.T) {
	assert.Equal(t, "Pune", CityName("Pune, Maharashtra, India"))
	assert.Equal(t, "Goa", CityName("  Goa "))
}
