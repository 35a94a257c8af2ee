package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/menta2k/pairgen"
	"github.com/menta2k/pairgen/internal/config"
	"github.com/menta2k/pairgen/pkg/degrade"
)

var degradeCmd = &cobra.Command{
	Use:   "degrade input_path output_dir",
	Short: "Produce degraded counterparts of source images",
	Long: `Degrade scales each source image, optionally blurs it and blends in
synthetic noise, then re-encodes it as PNG or JPEG into the output
directory. Algorithm choices left unset are drawn randomly per image,
so a directory run yields diverse degradations.`,
	Args: cobra.ExactArgs(2),
	RunE: runDegrade,
}

func init() {
	rootCmd.AddCommand(degradeCmd)
	defaults := config.Default().Degrade

	degradeCmd.Flags().Float64("scale", defaults.Scale, "Scaling factor applied to each image")
	degradeCmd.Flags().String("scaling-algo", "", "Scaling algorithm: down_up|linear|cubic_mitchell|lanczos|gauss|box (empty = random per image)")
	degradeCmd.Flags().Bool("blur", false, "Apply blur")
	degradeCmd.Flags().String("blur-type", "", "Blur type: average|gaussian|anisotropic (empty = random per image)")
	degradeCmd.Flags().Bool("noise", false, "Blend in synthetic noise")
	degradeCmd.Flags().Float64("noise-intensity", defaults.NoiseIntensity, "Intensity of the synthetic noise")
	degradeCmd.Flags().Bool("save-as-jpeg", false, "Save outputs as JPEG instead of PNG")
	degradeCmd.Flags().IntSlice("jpeg-quality-range", []int{defaults.JPEGQualityMin, defaults.JPEGQualityMax}, "JPEG quality range as MIN,MAX; the quality is drawn per image")

	bindings := map[string]string{
		"degrade.scale":              "scale",
		"degrade.scaling_algo":       "scaling-algo",
		"degrade.blur":               "blur",
		"degrade.blur_type":          "blur-type",
		"degrade.noise":              "noise",
		"degrade.noise_intensity":    "noise-intensity",
		"degrade.save_as_jpeg":       "save-as-jpeg",
		"degrade.jpeg_quality_range": "jpeg-quality-range",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, degradeCmd.Flags().Lookup(flag))
	}
}

func runDegrade(cmd *cobra.Command, args []string) error {
	cfg := degrade.Config{
		Scale:          viper.GetFloat64("degrade.scale"),
		ScalingAlgo:    viper.GetString("degrade.scaling_algo"),
		Blur:           viper.GetBool("degrade.blur"),
		BlurType:       viper.GetString("degrade.blur_type"),
		Noise:          viper.GetBool("degrade.noise"),
		NoiseIntensity: viper.GetFloat64("degrade.noise_intensity"),
		SaveAsJPEG:     viper.GetBool("degrade.save_as_jpeg"),
	}

	qr := viper.GetIntSlice("degrade.jpeg_quality_range")
	if len(qr) != 2 {
		return fmt.Errorf("%w: --jpeg-quality-range takes exactly MIN,MAX", config.ErrInvalid)
	}
	cfg.JPEGQualityMin, cfg.JPEGQualityMax = qr[0], qr[1]

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	pg := pairgen.NewWithOptions(viper.GetInt64("seed"), logger)
	return pg.DegradePath(args[0], args[1], cfg)
}
