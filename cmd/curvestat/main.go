// Command curvestat loads a curve file, optionally edits it, and prints
// statistics about the evaluated curves.
//
// Usage:
//
//	curvestat [flags] file.toml|file.yaml
//
// Settings that rarely change per run come from the environment:
// CURVES_WORKERS, CURVES_LOG_LEVEL, CURVES_PREVIEW_SIZE and
// CURVES_STROKE_WIDTH.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	curves "github.com/gogpu/gg-curves"
	"github.com/gogpu/gg-curves/internal/curvefile"
	"github.com/gogpu/gg-curves/internal/preview"
)

func main() {
	var (
		cuts       = flag.Int("subdivide", 0, "cuts to insert in every segment")
		splitEvery = flag.Int("split-every", 0, "remove every Nth point and split the curves there")
		reverse    = flag.Bool("reverse", false, "reverse the direction of all curves")
		output     = flag.String("output", "", "write the edited curves to this file")
		previewOut = flag.String("preview", "", "render a PNG preview to this file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	curves.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	curves.SetWorkers(cfg.Workers)

	c, err := curvefile.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load: %v", err)
	}

	all := curves.MaskFromRange(c.CurvesRange())
	if *reverse {
		c.ReverseCurves(all)
	}
	if *cuts > 0 {
		c = c.Subdivide(all, curves.VArraySingle(*cuts, c.PointsNum()), nil)
	}
	if *splitEvery > 1 {
		c = c.RemovePointsAndSplit(everyNth(c.PointsNum(), *splitEvery))
	}

	printStats(os.Stdout, c)

	if *output != "" {
		if err := curvefile.Save(*output, c); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
	}
	if *previewOut != "" {
		opts := preview.DefaultOptions()
		opts.Width, opts.Height = cfg.PreviewSize, cfg.PreviewSize
		opts.StrokeWidth = cfg.StrokeWidth
		if err := preview.WritePNG(*previewOut, c, opts); err != nil {
			log.Fatalf("Failed to write preview: %v", err)
		}
	}
}

// everyNth selects points n-1, 2n-1, ... of size points.
func everyNth(size, n int) curves.IndexMask {
	var m curves.IndexMask
	for i := n - 1; i < size; i += n {
		m = append(m, i)
	}
	return m
}

func printStats(w io.Writer, c *curves.Curves) {
	p := message.NewPrinter(language.English)
	counts := c.CurveTypeCounts()
	p.Fprintf(w, "curves:           %d\n", c.CurvesNum())
	for t, n := range counts {
		if n > 0 {
			p.Fprintf(w, "  %-14s  %d\n", curves.CurveType(t), n)
		}
	}
	p.Fprintf(w, "control points:   %d\n", c.PointsNum())
	p.Fprintf(w, "evaluated points: %d\n", c.EvaluatedPointsSize())

	var total float32
	for i := range c.CurvesNum() {
		total += c.CurveLength(i)
	}
	p.Fprintf(w, "total length:     %.4f\n", total)
	if lo, hi, ok := c.Bounds(); ok {
		p.Fprintf(w, "bounds:           (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	if invalid := c.InvalidCurves(); !invalid.IsEmpty() {
		p.Fprintf(w, "invalid NURBS:    %d\n", invalid.Len())
	}
}
