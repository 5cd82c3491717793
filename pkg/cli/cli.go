// Package cli is the bearingstogps command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kass/go-bearings/pkg/bearing"
	"github.com/kass/go-bearings/pkg/config"
	"github.com/kass/go-bearings/pkg/geodesy"
	"github.com/kass/go-bearings/pkg/logging"
	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/observability"
	"github.com/kass/go-bearings/pkg/output"
	"github.com/kass/go-bearings/pkg/postgis"
	"github.com/kass/go-bearings/pkg/table"
	"github.com/kass/go-bearings/pkg/traverse"
	"github.com/kass/go-bearings/pkg/units"
)

const description = "Given a starting GPS coordinate (longitude and latitude), convert a series of " +
	"bearings and distances into a line or shape."

const infileHelp = "File of a series of bearings and distances describing a line or shape " +
	"(csv, tsv, xlsx or yaml). Required headers: [bearing, distance]."

// TraverseStore persists a finished traverse.
type TraverseStore interface {
	InitSchema(ctx context.Context) error
	SaveTraverse(ctx context.Context, name string, points []models.Location) (int64, error)
	Close() error
}

// App wires the command line to its collaborators.
type App struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Clock     clockwork.Clock
	Geodesic  traverse.Geodesic
	OpenStore func(ctx context.Context, dsn string) (TraverseStore, error)
}

// NewApp returns an App using the real clock, WGS-84 geodesics and PostGIS.
func NewApp(stdout, stderr io.Writer) *App {
	return &App{
		Stdout:    stdout,
		Stderr:    stderr,
		Clock:     clockwork.NewRealClock(),
		Geodesic:  geodesy.WGS84{},
		OpenStore: openPostGIS,
	}
}

func openPostGIS(ctx context.Context, dsn string) (TraverseStore, error) {
	s, err := postgis.NewStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Execute runs the command line with args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if args == nil {
		args = []string{}
	}
	cmd := a.Command()
	cmd.SetArgs(args)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

// Command builds the command tree. Each call gets its own viper instance.
func (a *App) Command() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "bearingstogps",
		Short:         "Convert survey bearings and distances into GPS coordinates",
		Long:          description + "\n\nWrites lon,lat,zero rows (or GeoJSON) to stdout, starting with the origin.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(cmd.Context(), v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyConfig, "", "Optional yaml file holding any of these settings")
	flags.String(config.KeyInfile, "", infileHelp)
	flags.Float64(config.KeyLon, 0, "Longitude of the starting coordinate, the source of the first bearing in --infile")
	flags.Float64(config.KeyLat, 0, "Latitude of the starting coordinate, the source of the first bearing in --infile")
	flags.String(config.KeyUnits, string(units.Feet),
		"Units the distances in --infile are in: "+strings.Join(units.Names(), ", ")+" [1 pole/rod = 16.5 feet]")
	flags.String(config.KeyFileType, "", "Override file type detection: csv, tsv, xlsx or yaml")
	flags.String(config.KeySheet, "", "Worksheet to read from an xlsx file (default: first sheet)")
	flags.String(config.KeyLogLevel, "warn", "Log level: debug, info, warn or error")
	flags.String(config.KeyLogFormat, "text", "Log format: text or json")
	flags.String(config.KeyMetricsTextfile, "", "Write run metrics to this file in Prometheus text format")

	rootCmd.Flags().String(config.KeyFormat, output.FormatCSV, "Output format: "+strings.Join(output.Formats(), ", "))
	rootCmd.Flags().String(config.KeyPostGISDSN, "", "Also store the traverse in this PostGIS database")
	rootCmd.Flags().String(config.KeyTraverseName, "", "Name of the stored traverse (default: input file name)")

	rootCmd.AddCommand(a.parseCommand(), a.nearestCommand(v), a.withinCommand(v))
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)
	return rootCmd
}

// normalizeFlag accepts --units for --distance-units and underscores for
// hyphens.
func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "units" {
		name = config.KeyUnits
	}
	return pflag.NormalizedName(name)
}

// run carries the state of one conversion.
type run struct {
	app     *App
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	start   time.Time
}

func (a *App) setup(v *viper.Viper) (*run, error) {
	start := a.Clock.Now()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return &run{
		app:     a,
		cfg:     cfg,
		logger:  logging.Setup(cfg.LogLevel, cfg.LogFormat, a.Stderr),
		metrics: observability.NewMetrics(),
		start:   start,
	}, nil
}

func (r *run) records() ([]models.Record, error) {
	records, err := table.ReadRecords(r.cfg.Infile, table.Options{FileType: r.cfg.FileType, Sheet: r.cfg.Sheet})
	if err != nil {
		return nil, err
	}
	r.metrics.RecordsRead.Add(float64(len(records)))
	r.logger.Info("records read", "file", r.cfg.Infile, "records", len(records))
	return records, nil
}

func (r *run) builder() *traverse.Builder {
	return traverse.NewBuilder(traverse.Config{
		Origin: models.Location{Lat: r.cfg.Lat, Lon: r.cfg.Lon},
		Units:  r.cfg.Units,
	}, r.app.Geodesic, r.logger)
}

func (r *run) observeLeg(leg traverse.Leg) {
	r.metrics.LegsBuilt.Inc()
	r.metrics.LegLength.Observe(leg.Feet)
}

// finish records the outcome and writes the metrics textfile. It returns err
// unchanged unless the metrics could not be written after a successful run.
func (r *run) finish(err error) error {
	var parseErr *bearing.ParseError
	if errors.As(err, &parseErr) {
		r.metrics.ParseErrors.Inc()
	}
	r.metrics.RunDuration.Set(r.app.Clock.Since(r.start).Seconds())

	if r.cfg.MetricsTextfile == "" {
		return err
	}
	if werr := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); werr != nil {
		if err == nil {
			return werr
		}
		r.logger.Error("metrics not written", "error", werr)
	}
	return err
}

func (r *run) traverseName() string {
	if r.cfg.TraverseName != "" {
		return r.cfg.TraverseName
	}
	base := filepath.Base(r.cfg.Infile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (a *App) convert(ctx context.Context, v *viper.Viper) (err error) {
	r, err := a.setup(v)
	if err != nil {
		return err
	}
	defer func() { err = r.finish(err) }()

	records, err := r.records()
	if err != nil {
		return err
	}

	w, err := output.New(r.cfg.Format, a.Stdout, r.traverseName())
	if err != nil {
		return err
	}

	b := r.builder()
	points := make([]models.Location, 0, len(records)+1)
	points = append(points, b.Origin())
	if err := w.WritePoint(b.Origin()); err != nil {
		return err
	}
	err = b.Walk(records, func(leg traverse.Leg) error {
		if err := w.WritePoint(leg.To); err != nil {
			return err
		}
		points = append(points, leg.To)
		r.observeLeg(leg)
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	length := geodesy.PathLength(points)
	r.metrics.TraverseLength.Set(length)
	r.logger.Info("traverse built", "points", len(points), "length_m", length)

	if r.cfg.PostGISDSN == "" {
		return nil
	}
	return r.store(ctx, points)
}

func (r *run) store(ctx context.Context, points []models.Location) error {
	s, err := r.app.OpenStore(ctx, r.cfg.PostGISDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.InitSchema(ctx); err != nil {
		return err
	}
	id, err := s.SaveTraverse(ctx, r.traverseName(), points)
	if err != nil {
		return err
	}
	r.logger.Info("traverse stored", "id", id, "name", r.traverseName(), "points", len(points))
	return nil
}

func (a *App) printError(err error) {
	msg := "Error: " + err.Error()
	if f, ok := a.Stderr.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		msg = lipgloss.NewRenderer(f).NewStyle().Foreground(lipgloss.Color("#FF5555")).Render(msg)
	}
	fmt.Fprintln(a.Stderr, msg)
}
