package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestPlanCommand(t *testing.T) {
	base := []string{"--catalog", "testdata/pune.yaml", "--prefs", "testdata/trip.yaml", "--today", "2030-03-01"}

	t.Run("json itinerary", func(t *testing.T) {
		out, _, err := execute(t, base...)
		require.NoError(t, err)

		var res types.ItineraryResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Contains(t, []types.ItineraryStatus{types.StatusSuccess, types.StatusInfeasible}, res.Status)
		assert.Len(t, res.Itinerary, 3)

		for key, day := range res.Itinerary {
			for _, item := range day.Items {
				assert.NotEqual(t, "pune-sinhagad", item.PlaceID, "%s is outside the search radius", key)
				assert.NotEmpty(t, item.Tips, item.Name)
			}
		}
	})

	t.Run("deterministic without a seed", func(t *testing.T) {
		first, _, err := execute(t, base...)
		require.NoError(t, err)
		second, _, err := execute(t, base...)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("yaml output", func(t *testing.T) {
		out, _, err := execute(t, append(base, "-o", "yaml")...)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "Pune, India", doc["destination"])
		assert.Contains(t, doc, "overall_summary")
	})

	t.Run("past trip is rejected", func(t *testing.T) {
		_, stderr, err := execute(t, "--catalog", "testdata/pune.yaml", "--prefs", "testdata/trip.yaml", "--today", "2030-04-01")
		require.ErrorIs(t, err, types.ErrValidation)
		assert.Contains(t, stderr, "start_date: cannot be in the past")
	})

	t.Run("missing flags", func(t *testing.T) {
		_, _, err := execute(t, "--catalog", "testdata/pune.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefs")
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, _, err := execute(t, append(base, "--output", "xml")...)
		assert.ErrorContains(t, err, "unsupported output format")
	})

	t.Run("missing catalog file", func(t *testing.T) {
		_, _, err := execute(t, "--catalog", "testdata/nope.yaml", "--prefs", "testdata/trip.yaml")
		assert.ErrorContains(t, err, "reading catalog")
	})
}

func TestFileRepository_Search(t *testing.T) {
	catalog, err := loadCatalog("testdata/pune.yaml")
	require.NoError(t, err)
	repo := &fileRepository{catalog: catalog}
	ctx := context.Background()

	ids := func(ps []types.Place) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	t.Run("tags are ordered by rating and cut by radius", func(t *testing.T) {
		got, err := repo.Search(ctx, places.SearchQuery{Destination: "Pune, India", Tags: []string{"historical_place"}, RadiusKm: 15})
		require.NoError(t, err)
		assert.Equal(t, []string{"pune-pataleshwar", "pune-shaniwar-wada", "pune-aga-khan-palace"}, ids(got))
	})

	t.Run("wider radius includes far places", func(t *testing.T) {
		got, err := repo.Search(ctx, places.SearchQuery{Destination: "Pune", Tags: []string{"historical_place"}, RadiusKm: 25, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"pune-sinhagad"}, ids(got))
	})

	t.Run("name search", func(t *testing.T) {
		got, err := repo.Search(ctx, places.SearchQuery{Destination: "Pune", Name: "aga khan", RadiusKm: 25})
		require.NoError(t, err)
		assert.Equal(t, []string{"pune-aga-khan-palace"}, ids(got))
	})

	t.Run("other city", func(t *testing.T) {
		got, err := repo.Search(ctx, places.SearchQuery{Destination: "Goa", Tags: []string{"museum"}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
