package planner

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, now: time.Now}
}

// GenerateItinerary godoc
// @Summary      Generate an itinerary
// @Description  Builds a day-by-day itinerary with meals, travel legs and cost estimates. Infeasible plans are returned with status "infeasible" and the violated constraints.
// @Tags         Planner
// @Accept       json
// @Produce      json
// @Param        request body types.PlanRequest true "Travel preferences"
// @Success      200 {object} types.ItineraryResult "Itinerary"
// @Failure      400 {object} types.Response "Invalid preferences"
// @Failure      500 {object} types.ItineraryResult "Internal error"
// @Failure      503 {object} types.ItineraryResult "Cancelled or collaborators unavailable"
// @Router       /planner/generate [post]
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/generate"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	var req types.PlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := req.ToPreferences(h.now())
	if err != nil {
		writeValidation(w, r, err)
		return
	}

	result, err := h.service.GenerateItinerary(ctx, prefs)
	if err != nil && result == nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			api.ValidationErrorResponse(w, r, verr)
			return
		}
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		return
	}
	if err != nil {
		l.WarnContext(ctx, "Itinerary generation ended early", slog.Any("error", err))
	}

	api.WriteJSONResponse(w, r, statusCode(result.Status), result)
}

func statusCode(s types.ItineraryStatus) int {
	switch s {
	case types.StatusError:
		return http.StatusInternalServerError
	case types.StatusCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

// ExampleRequest godoc
// @Summary      Example planning request
// @Description  Returns a ready-to-send request body starting next week.
// @Tags         Planner
// @Produce      json
// @Success      200 {object} types.PlanRequest
// @Router       /planner/example [get]
func (h *Handler) ExampleRequest(w http.ResponseWriter, r *http.Request) {
	start := h.now().AddDate(0, 0, 7)
	api.WriteJSONResponse(w, r, http.StatusOK, types.PlanRequest{
		Destination: "Pune, India",
		StartDate:   types.FormatDate(start),
		EndDate:     types.FormatDate(start.AddDate(0, 0, 2)),
		BudgetRange: string(types.BudgetMedium),
		Interests:   []string{string(types.InterestCulture), string(types.InterestFood), string(types.InterestHistory)},
		MustVisit:   []string{"Shaniwar Wada", "Aga Khan Palace"},
		Pace:        string(types.PaceModerate),
	})
}

// SaveItinerary godoc
// @Summary      Save an itinerary
// @Tags         Itineraries
// @Accept       json
// @Produce      json
// @Param        request body types.SaveItineraryRequest true "Generated itinerary"
// @Success      201 {object} types.SavedItinerary
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /itineraries [post]
func (h *Handler) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "SaveItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "SaveItinerary"))

	userID, ok := appMiddleware.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	var req types.SaveItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.SaveItinerary(ctx, userID, req)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save itinerary")
		return
	}
	l.InfoContext(ctx, "Itinerary saved", slog.String("itinerary_id", saved.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, saved)
}

// GetItinerary godoc
// @Summary      Get a saved itinerary
// @Tags         Itineraries
// @Produce      json
// @Param        itineraryID path string true "Itinerary ID"
// @Success      200 {object} types.SavedItinerary
// @Failure      400 {object} types.Response "Invalid ID"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID} [get]
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}"),
	))
	defer span.End()

	userID, ok := appMiddleware.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	it, err := h.service.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

// ListItineraries godoc
// @Summary      List saved itineraries
// @Tags         Itineraries
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(10)
// @Success      200 {object} types.PaginatedItinerariesResponse
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /itineraries [get]
func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "ListItineraries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	userID, ok := appMiddleware.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, size := api.Pagination(r, 10, 50)
	list, err := h.service.ListItineraries(ctx, userID, page, size)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

func writeValidation(w http.ResponseWriter, r *http.Request, err error) bool {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		api.ValidationErrorResponse(w, r, verr)
		return true
	}
	if errors.Is(err, types.ErrValidation) {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}
