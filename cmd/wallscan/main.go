// Command wallscan analyzes photographs of wall surfaces for crack-like
// defects and prints a structural-health report as JSON.
//
// Usage:
//
//	wallscan [flags] image.png [image2.jpg ...]
//
// With --reference, a sheet of known size placed on the wall is located
// and used to report crack sizes in physical units. With --overlay-dir,
// an annotated PNG is written per input image.
package main

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wallscan/wallscan/internal/analyze"
	"github.com/wallscan/wallscan/internal/compose"
	"github.com/wallscan/wallscan/internal/config"
	"github.com/wallscan/wallscan/internal/label"
	"github.com/wallscan/wallscan/internal/raster"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var (
		configPath string
		overlayDir string
		scale      float64
		workers    int
		reference  bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file.")
	pflag.StringVarP(&overlayDir, "overlay-dir", "o", "", "Directory to write annotated overlay images into.")
	pflag.Float64Var(&scale, "scale", 1.0, "Scale factor for overlay output.")
	pflag.IntVarP(&workers, "workers", "w", 0, "Worker count for batch analysis (0 = one per CPU).")
	pflag.BoolVarP(&reference, "reference", "r", false, "Locate the reference marker and report physical units.")
	pflag.Parse()

	paths := pflag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: wallscan [flags] image.png [image2.jpg ...]")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	// Flags override the file.
	if pflag.CommandLine.Changed("workers") {
		cfg.Workers = workers
	}
	if pflag.CommandLine.Changed("reference") {
		cfg.Analysis.LocateReference = reference
	}

	cache := raster.NewCache()
	results := analyze.Batch(cache, paths, cfg.Analysis, cfg.Workers)

	failed := 0
	type resultJSON struct {
		Path    string           `json:"path"`
		Summary *analyze.Summary `json:"summary,omitempty"`
		Error   string           `json:"error,omitempty"`
	}
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{Path: r.Path, Summary: r.Summary}
		if r.Err != nil {
			failed++
			out[i].Error = r.Err.Error()
			log.Printf("%s: %v", r.Path, r.Err)
			continue
		}
		if overlayDir != "" {
			if err := writeOverlay(cache, overlayDir, r, cfg, scale); err != nil {
				log.Printf("%s: overlay: %v", r.Path, err)
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encoding report: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// writeOverlay renders the combined detection mask over the source image,
// annotates crack bounding boxes, and writes the result as PNG.
func writeOverlay(cache *raster.Cache, dir string, r analyze.Result, cfg *config.Config, scale float64) error {
	img, err := cache.Load(r.Path)
	if err != nil {
		return err
	}

	overlay, err := compose.Overlay(img, r.Summary.Mask, cfg.OverlayTint, cfg.OverlayOpacity)
	if err != nil {
		return err
	}

	comps := make([]label.Component, 0, len(r.Summary.Cracks))
	for _, c := range r.Summary.Cracks {
		comps = append(comps, c.Component)
	}
	if err := compose.Annotate(overlay, comps, cfg.OverlayTint); err != nil {
		return err
	}

	scaled, err := compose.Scale(overlay, scale)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(r.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(dir, stem+"_overlay.png")

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, scaled); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}
