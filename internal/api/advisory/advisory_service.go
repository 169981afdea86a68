package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const maxTips = 4

// TipRequest describes one scheduled stop.
type TipRequest struct {
	PlaceName     string
	Category      string
	VisitTime     string // HH:MM
	DurationHours float64
	City          string
	BudgetTier    types.BudgetTier
	Pace          types.Pace
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator is a Generator backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.4),
		MaxOutputTokens: 256,
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	TipsFor(ctx context.Context, req TipRequest) []string
	HasContent(placeName string) bool
}

// ServiceImpl never fails: when the generator is missing or errors the
// built-in category tips are returned instead.
type ServiceImpl struct {
	logger    *slog.Logger
	generator Generator
	cache     *cache.Cache
	timeout   time.Duration
}

func NewService(generator Generator, cacheTTL, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 12 * time.Hour
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &ServiceImpl{
		logger:    logger,
		generator: generator,
		cache:     cache.New(cacheTTL, time.Hour),
		timeout:   timeout,
	}
}

func (s *ServiceImpl) TipsFor(ctx context.Context, req TipRequest) []string {
	ctx, span := otel.Tracer("AdvisoryService").Start(ctx, "TipsFor", trace.WithAttributes(
		attribute.String("place.name", req.PlaceName),
		attribute.String("place.category", req.Category),
	))
	defer span.End()

	key := normalizeName(req.PlaceName)
	if cached, found := s.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]string)
	}
	if s.generator == nil {
		return fallbackTips(req)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(callCtx, prompt(req))
	tips := parseTips(text)
	if err != nil || len(tips) == 0 {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
		}
		metrics.Get().AdvisoryFailuresTotal.Add(ctx, 1)
		s.logger.WarnContext(ctx, "Advisory generation failed, using category tips",
			slog.String("place", req.PlaceName), slog.Any("error", err))
		return fallbackTips(req)
	}

	s.cache.Set(key, tips, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "")
	return tips
}

// HasContent reports whether generated tips are cached for the place.
func (s *ServiceImpl) HasContent(placeName string) bool {
	_, found := s.cache.Get(normalizeName(placeName))
	return found
}

func prompt(req TipRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a local guide in %s.\n", req.City)
	fmt.Fprintf(&b, "Give at most %d short, practical insider tips for visiting %q (%s) ", maxTips, req.PlaceName, req.Category)
	fmt.Fprintf(&b, "at %s for about %.1f hours. ", req.VisitTime, req.DurationHours)
	fmt.Fprintf(&b, "The traveller has a %s budget and a %s pace.\n", req.BudgetTier, req.Pace)
	b.WriteString("Reply with one tip per line and nothing else.")
	return b.String()
}

// parseTips keeps up to maxTips non-empty lines with list markers removed.
func parseTips(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789.) "))
		if line == "" {
			continue
		}
		tips = append(tips, line)
		if len(tips) == maxTips {
			break
		}
	}
	return tips
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
