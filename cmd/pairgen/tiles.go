package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/menta2k/pairgen"
	"github.com/menta2k/pairgen/internal/config"
	"github.com/menta2k/pairgen/pkg/tiler"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles input_path output_dir",
	Short: "Slice randomly rescaled images into fixed-size tiles",
	Long: `Tiles rescales each source image by a factor drawn from the configured
range, retrying until the result can hold at least one output tile, then
cuts the full grid of non-overlapping tiles. When no full grid tile fits,
a single randomly placed crop is extracted instead. Sources smaller than
one tile are skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runTiles,
}

func init() {
	rootCmd.AddCommand(tilesCmd)
	defaults := config.Default().Tiles

	tilesCmd.Flags().Float64("scale-min", defaults.ScaleMin, "Minimum scaling factor")
	tilesCmd.Flags().Float64("scale-max", defaults.ScaleMax, "Maximum scaling factor")
	tilesCmd.Flags().Int("output-width", defaults.OutputWidth, "Width of each output tile")
	tilesCmd.Flags().Int("output-height", defaults.OutputHeight, "Height of each output tile")
	tilesCmd.Flags().Int("max-retries", defaults.MaxRetries, "Retry budget for the scale factor search")
	tilesCmd.Flags().String("format", defaults.Format, "Tile output format: png|jpeg|webp")
	tilesCmd.Flags().Int("quality", defaults.Quality, "Quality for lossy tile formats (1-100)")

	bindings := map[string]string{
		"tiles.scale_min":     "scale-min",
		"tiles.scale_max":     "scale-max",
		"tiles.output_width":  "output-width",
		"tiles.output_height": "output-height",
		"tiles.max_retries":   "max-retries",
		"tiles.format":        "format",
		"tiles.quality":       "quality",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, tilesCmd.Flags().Lookup(flag))
	}
}

func runTiles(cmd *cobra.Command, args []string) error {
	cfg := tiler.Config{
		ScaleMin:     viper.GetFloat64("tiles.scale_min"),
		ScaleMax:     viper.GetFloat64("tiles.scale_max"),
		OutputWidth:  viper.GetInt("tiles.output_width"),
		OutputHeight: viper.GetInt("tiles.output_height"),
		MaxRetries:   viper.GetInt("tiles.max_retries"),
		Format:       viper.GetString("tiles.format"),
		Quality:      viper.GetInt("tiles.quality"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	pg := pairgen.NewWithOptions(viper.GetInt64("seed"), logger)
	return pg.TilePath(args[0], args[1], cfg)
}
