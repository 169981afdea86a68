package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appLogger "github.com/FACorreiaa/go-travel-planner/app/logger"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/advisory"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/api/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/api/travel"
	engine "github.com/FACorreiaa/go-travel-planner/internal/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type planOptions struct {
	catalogPath string
	prefsPath   string
	seed        uint64
	today       string
	output      string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build an itinerary from a place catalog and a preferences file",
		Long: `Build a day-by-day itinerary without a database or network access.

The catalog is a YAML file listing the places of one city. The preferences
file uses the same fields as the HTTP planning request. Travel legs use
straight-line estimates and tips come from the built-in category advice.`,
		Example:      "  plan --catalog pune.yaml --prefs trip.yaml --today 2026-11-01",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "YAML place catalog (required)")
	cmd.Flags().StringVar(&opts.prefsPath, "prefs", "", "YAML or JSON preferences file (required)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for randomised costs and durations; 0 keeps them deterministic")
	cmd.Flags().StringVar(&opts.today, "today", "", "date used to reject past trips, YYYY-MM-DD (default: now)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log planner decisions to stderr")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("prefs")

	return cmd
}

func runPlan(cmd *cobra.Command, opts *planOptions) error {
	if opts.output != "json" && opts.output != "yaml" {
		return fmt.Errorf("unsupported output format %q", opts.output)
	}

	today := time.Now()
	if opts.today != "" {
		t, err := time.Parse(time.DateOnly, opts.today)
		if err != nil {
			return fmt.Errorf("--today must be formatted as YYYY-MM-DD: %w", err)
		}
		today = t
	}

	logOut := io.Discard
	if opts.verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := appLogger.New("development", logOut)

	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	req, err := loadRequest(opts.prefsPath)
	if err != nil {
		return err
	}
	prefs, err := req.ToPreferences(today)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
			}
		}
		return err
	}

	var assemblerOpts []engine.AssemblerOption
	if opts.seed != 0 {
		assemblerOpts = append(assemblerOpts, engine.WithCostSeed(opts.seed))
	}

	svc := planner.NewServiceImpl(
		nil,
		places.NewCatalog(&fileRepository{catalog: catalog}, time.Hour, logger),
		advisory.NewService(nil, 0, 0, logger),
		engine.NewAssembler(travel.EstimateOracle{}, logger, assemblerOpts...),
		planner.DefaultLimits(),
		metrics.Noop(),
		logger,
		planner.WithClock(func() time.Time { return today }),
	)

	result, err := svc.GenerateItinerary(cmd.Context(), prefs)
	if result == nil {
		return err
	}
	if werr := writeResult(cmd.OutOrStdout(), opts.output, result); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if result.Status == types.StatusError {
		return errors.New(result.Message)
	}
	return nil
}

// loadRequest reads a planning request. YAML is a superset of JSON so
// both formats are accepted.
func loadRequest(path string) (types.PlanRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.PlanRequest{}, fmt.Errorf("reading preferences: %w", err)
	}
	var req types.PlanRequest
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return types.PlanRequest{}, fmt.Errorf("parsing preferences %s: %w", path, err)
	}
	return req, nil
}

func writeResult(w io.Writer, format string, result *types.ItineraryResult) error {
	if format == "yaml" {
		// round-trip through JSON so the output keeps the API field names
		raw, err := json.Marshal(result)
		if err != nil {
			return err
		}
		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
