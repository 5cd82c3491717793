package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kass/go-bearings/pkg/bearing"
	"github.com/kass/go-bearings/pkg/geodesy"
	"github.com/kass/go-bearings/pkg/index"
	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/output"
	"github.com/kass/go-bearings/pkg/traverse"
	"github.com/kass/go-bearings/pkg/units"
)

func (a *App) parseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse BEARING...",
		Short: "Print the azimuth of each bearing",
		Long: `Parse surveyor bearings such as "S 46° 59' 26\" E" or "north 22.1d east" and print
each one with its azimuth in degrees clockwise from north.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, text := range args {
				azimuth, err := bearing.Parse(text)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.Stdout, "%s\t%s\n", text, strconv.FormatFloat(azimuth, 'f', -1, 64))
			}
			return nil
		},
	}
}

func (a *App) nearestCommand(v *viper.Viper) *cobra.Command {
	var (
		toLon, toLat float64
		k            int
	)
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "List the traverse vertices nearest to a point",
		Long: `Build the traverse described by --infile and list the vertices closest to
(--to-lon, --to-lat) with their geodesic distance in feet. Vertex 0 is the origin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			to := models.Location{Lat: toLat, Lon: toLon}
			if to.Lat < -90 || to.Lat > 90 {
				return fmt.Errorf("to-lat must be between -90 and 90, got %v", to.Lat)
			}
			if k < 1 {
				return fmt.Errorf("k must be at least 1, got %d", k)
			}
			return a.withIndex(v, func(idx *index.VertexIndex) error {
				fmt.Fprintln(a.Stdout, "seq\tlon\tlat\tfeet")
				for _, n := range idx.Nearest(to, k) {
					fmt.Fprintf(a.Stdout, "%d\t%s\t%s\t%s\n", n.Seq,
						output.FormatCoordinate(n.Location.Lon),
						output.FormatCoordinate(n.Location.Lat),
						strconv.FormatFloat(n.Meters/units.FeetToMeters, 'f', 3, 64))
				}
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&toLon, "to-lon", 0, "Longitude of the query point")
	cmd.Flags().Float64Var(&toLat, "to-lat", 0, "Latitude of the query point")
	cmd.Flags().IntVarP(&k, "neighbors", "k", 1, "Number of vertices to list")
	cmd.MarkFlagRequired("to-lon")
	cmd.MarkFlagRequired("to-lat")
	return cmd
}

func (a *App) withinCommand(v *viper.Viper) *cobra.Command {
	var bbox []float64
	cmd := &cobra.Command{
		Use:   "within",
		Short: "List the traverse vertices inside a bounding box",
		Long: `Build the traverse described by --infile and list the vertices inside
--bbox MIN_LON,MIN_LAT,MAX_LON,MAX_LAT, edges included, in traverse order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(bbox) != 4 {
				return fmt.Errorf("bbox needs 4 values MIN_LON,MIN_LAT,MAX_LON,MAX_LAT, got %d", len(bbox))
			}
			box := models.BoundingBox{
				BottomLeft: models.Location{Lon: bbox[0], Lat: bbox[1]},
				TopRight:   models.Location{Lon: bbox[2], Lat: bbox[3]},
			}
			return a.withIndex(v, func(idx *index.VertexIndex) error {
				vertices, err := idx.QueryBox(box)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.Stdout, "seq\tlon\tlat")
				for _, vx := range vertices {
					fmt.Fprintf(a.Stdout, "%d\t%s\t%s\n", vx.Seq,
						output.FormatCoordinate(vx.Location.Lon),
						output.FormatCoordinate(vx.Location.Lat))
				}
				return nil
			})
		},
	}
	cmd.Flags().Float64SliceVar(&bbox, "bbox", nil, "Bounding box as MIN_LON,MIN_LAT,MAX_LON,MAX_LAT")
	cmd.MarkFlagRequired("bbox")
	return cmd
}

// withIndex builds the configured traverse, indexes its vertices and hands
// the index to fn.
func (a *App) withIndex(v *viper.Viper, fn func(*index.VertexIndex) error) (err error) {
	r, err := a.setup(v)
	if err != nil {
		return err
	}
	defer func() { err = r.finish(err) }()

	records, err := r.records()
	if err != nil {
		return err
	}

	b := r.builder()
	points := []models.Location{b.Origin()}
	err = b.Walk(records, func(leg traverse.Leg) error {
		points = append(points, leg.To)
		r.observeLeg(leg)
		return nil
	})
	if err != nil {
		return err
	}
	r.metrics.TraverseLength.Set(geodesy.PathLength(points))

	idx := index.NewVertexIndex(points)
	r.logger.Debug("vertices indexed", "count", idx.Count())
	return fn(idx)
}
