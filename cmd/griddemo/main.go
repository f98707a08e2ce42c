// Command griddemo interpolates a synthetic point cloud onto a grid and
// writes a PNG preview of the result.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gridding"
)

// job describes one demo run. It is read from the YAML file given with
// --config; command line flags override it.
type job struct {
	Method    string  `yaml:"method"`
	Points    int     `yaml:"points"`
	Seed      uint64  `yaml:"seed"`
	CellSize  float64 `yaml:"cell_size"`
	MaxPoints int     `yaml:"max_points"`
	Radius    float64 `yaml:"radius"`
	Quadrants bool    `yaml:"quadrants"`
	Power     float64 `yaml:"power"`
	CV        string  `yaml:"cross_validation"`
	Folds     int     `yaml:"folds"`
	Output    string  `yaml:"output"`
	Preview   int     `yaml:"preview_width"`
}

func defaultJob() job {
	return job{
		Method:    gridding.InverseDistance.String(),
		Points:    300,
		Seed:      1,
		MaxPoints: 20,
		Power:     2,
		CV:        "none",
		Folds:     5,
		Output:    "griddemo.png",
		Preview:   512,
	}
}

var (
	cfgFile string
	verbose bool
	flags   = defaultJob()
)

var rootCmd = &cobra.Command{
	Use:   "griddemo",
	Short: "Interpolate a synthetic point cloud onto a grid",
	Long: `griddemo generates a reproducible cloud of scattered measurements,
interpolates it with the chosen method, optionally cross validates the
method, and writes a colour-ramped PNG preview of the grid.`,
	Version:      gridding.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := loadJob(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), j)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML job file")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	f.StringVarP(&flags.Method, "method", "m", flags.Method, "interpolation method")
	f.IntVarP(&flags.Points, "points", "n", flags.Points, "number of synthetic points")
	f.Uint64Var(&flags.Seed, "seed", flags.Seed, "random seed of the point cloud")
	f.Float64Var(&flags.CellSize, "cell", flags.CellSize, "cell size (0 = suggested)")
	f.IntVar(&flags.MaxPoints, "max-points", flags.MaxPoints, "neighbours per estimate (0 = all)")
	f.Float64Var(&flags.Radius, "radius", flags.Radius, "search radius (0 = unlimited, -1 = suggested)")
	f.BoolVar(&flags.Quadrants, "quadrants", flags.Quadrants, "search each quadrant separately")
	f.Float64Var(&flags.Power, "power", flags.Power, "inverse distance power")
	f.StringVar(&flags.CV, "cv", flags.CV, "cross validation: none, loo, 2fold or kfold")
	f.IntVar(&flags.Folds, "folds", flags.Folds, "folds for k-fold cross validation")
	f.StringVarP(&flags.Output, "output", "o", flags.Output, "PNG output file")
	f.IntVar(&flags.Preview, "preview-width", flags.Preview, "width of the PNG preview in pixels")
}

// loadJob reads the job file, if any, and applies the flags that were set
// explicitly.
func loadJob(cmd *cobra.Command) (job, error) {
	if cfgFile == "" {
		return flags, nil
	}
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return job{}, fmt.Errorf("read job file: %w", err)
	}
	j := defaultJob()
	if err := yaml.Unmarshal(data, &j); err != nil {
		return job{}, fmt.Errorf("parse job file %s: %w", cfgFile, err)
	}

	set := cmd.Flags().Changed
	override := func(name string, apply func()) {
		if set(name) {
			apply()
		}
	}
	override("method", func() { j.Method = flags.Method })
	override("points", func() { j.Points = flags.Points })
	override("seed", func() { j.Seed = flags.Seed })
	override("cell", func() { j.CellSize = flags.CellSize })
	override("max-points", func() { j.MaxPoints = flags.MaxPoints })
	override("radius", func() { j.Radius = flags.Radius })
	override("quadrants", func() { j.Quadrants = flags.Quadrants })
	override("power", func() { j.Power = flags.Power })
	override("cv", func() { j.CV = flags.CV })
	override("folds", func() { j.Folds = flags.Folds })
	override("output", func() { j.Output = flags.Output })
	override("preview-width", func() { j.Preview = flags.Preview })
	return j, nil
}

func run(ctx context.Context, j job) error {
	if verbose {
		gridding.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	method, err := gridding.ParseMethod(j.Method)
	if err != nil {
		return err
	}
	cv, err := parseCV(j.CV, j.Folds)
	if err != nil {
		return err
	}

	points := synthetic(j.Points, j.Seed)
	search := gridding.SearchConfig{MaxPoints: j.MaxPoints, Radius: j.Radius, Quadrants: j.Quadrants}
	if j.Radius < 0 {
		search.Radius = gridding.SuggestSearchRadius(points)
	}
	opts := []gridding.Option{
		gridding.WithSearch(search),
		gridding.WithWeighting(gridding.Weighting{Scheme: gridding.InversePower, Power: j.Power}),
	}

	grid, err := newGrid(points, j.CellSize)
	if err != nil {
		return err
	}
	ip, err := gridding.New(method, points, opts...)
	if err != nil {
		return err
	}
	if err := gridding.Rasterize(ctx, grid, ip, opts...); err != nil {
		return err
	}

	nx, ny := grid.Size()
	st := grid.Stats()
	fmt.Printf("%v: %d points onto %d × %d cells of %g\n", method, points.Len(), nx, ny, grid.CellSize())
	fmt.Printf("\tcells with data:\t%d\n\tmin:\t%g\n\tmax:\t%g\n\tmean:\t%g\n", st.Count, st.Min, st.Max, st.Mean)

	summary, err := gridding.CrossValidate(ctx, points, method, cv, opts...)
	if err != nil {
		return err
	}
	if summary != nil {
		if err := summary.Report(os.Stdout, language.English); err != nil {
			return err
		}
	}

	if err := writePreview(j.Output, grid, j.Preview); err != nil {
		return err
	}
	fmt.Printf("preview written to %s\n", j.Output)
	return nil
}

func parseCV(mode string, folds int) (gridding.CrossValidation, error) {
	switch mode {
	case "", "none":
		return gridding.CrossValidation{Mode: gridding.CVNone}, nil
	case "loo", "leave-one-out":
		return gridding.CrossValidation{Mode: gridding.LeaveOneOut}, nil
	case "2fold", "2-fold":
		return gridding.CrossValidation{Mode: gridding.TwoFold}, nil
	case "kfold", "k-fold":
		return gridding.CrossValidation{Mode: gridding.KFold, Folds: folds}, nil
	}
	return gridding.CrossValidation{}, fmt.Errorf("unknown cross validation %q", mode)
}

// synthetic returns n points on [0, 100]² sampling a smooth surface with
// two hills and a trend.
func synthetic(n int, seed uint64) *gridding.PointSet {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]gridding.Point, n)
	for i := range pts {
		x, y := r.Float64()*100, r.Float64()*100
		pts[i] = gridding.Point{X: x, Y: y, Value: surface(x, y)}
	}
	return gridding.NewPointSet(pts)
}

func surface(x, y float64) float64 {
	hill := func(cx, cy, h, w float64) float64 {
		dx, dy := (x-cx)/w, (y-cy)/w
		return h * math.Exp(-(dx*dx + dy*dy))
	}
	return hill(30, 35, 80, 18) + hill(70, 65, 50, 12) + 0.2*x
}

func newGrid(points *gridding.PointSet, cellSize float64) (*gridding.Grid, error) {
	if cellSize <= 0 {
		return gridding.SuggestGrid(points)
	}
	return gridding.NewGridFromBound(points.Bound(), cellSize)
}

// writePreview colours the grid from blue (minimum) to red (maximum),
// leaves no-data cells transparent and scales the image to width pixels.
func writePreview(path string, g *gridding.Grid, width int) error {
	nx, ny := g.Size()
	st := g.Stats()
	span := st.Max - st.Min
	if span == 0 {
		span = 1
	}

	src := image.NewNRGBA(image.Rect(0, 0, nx, ny))
	for y := range ny {
		for x := range nx {
			if g.IsNoData(x, y) {
				continue
			}
			// Row 0 is the southern edge; image rows grow downwards.
			src.SetNRGBA(x, ny-1-y, ramp((g.Value(x, y)-st.Min)/span))
		}
	}

	var img image.Image = src
	if width > 0 && width != nx {
		height := max(1, int(math.Round(float64(width)*float64(ny)/float64(nx))))
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ramp maps t in [0, 1] to a blue-cyan-green-yellow-red colour.
func ramp(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	r := math.Min(1, math.Max(0, 2*t-0.5)*1.5)
	g := 1 - math.Abs(2*t-1)
	b := math.Min(1, math.Max(0, 1.5-2*t))
	return color.NRGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}
