package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveItineraryRequest_Validate(t *testing.T) {
	valid := SaveItineraryRequest{
		StartDate: "2030-03-10",
		EndDate:   "2030-03-12",
		Itinerary: ItineraryResult{Status: StatusInfeasible, Destination: "Pune"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SaveItineraryRequest)
		want   []string
	}{
		{"bad dates", func(r *SaveItineraryRequest) { r.StartDate, r.EndDate = "10/03/2030", "" }, []string{"start_date", "end_date"}},
		{"end before start", func(r *SaveItineraryRequest) { r.EndDate = "2030-03-09" }, []string{"end_date"}},
		{"short destination", func(r *SaveItineraryRequest) { r.Itinerary.Destination = " P " }, []string{"itinerary.destination"}},
		{"error results are not saved", func(r *SaveItineraryRequest) { r.Itinerary.Status = StatusError }, []string{"itinerary.status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Equal(t, tt.want, fieldsOf(t, req.Validate()))
		})
	}
}

func TestNewItineraryResult(t *testing.T) {
	it := &Itinerary{
		Destination: "Pune",
		Status:      StatusSuccess,
		Days:        []DaySchedule{{Day: 1}, {Day: 2}},
	}
	res := NewItineraryResult(it, "ok")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.Itinerary, 2)
	assert.Equal(t, 2, res.Itinerary["day_2"].Day)
	assert.Same(t, &it.Summary, res.OverallSummary)
}
