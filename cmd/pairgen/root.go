package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/menta2k/pairgen"
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "pairgen",
	Short: "Build synthetic training-data pairs for image models",
	Long: `pairgen builds synthetic training data for image models: degraded
counterparts of clean source images, fixed-size tiles cut from randomly
rescaled images, and a folder diff for keeping paired datasets in sync.`,
	Version:       pairgen.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().Int64("seed", 0, "Seed for the random source (0 = time-based)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: pairgen.{yaml,json,toml} in . or ~/.config/pairgen)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

// initConfig wires flag defaults, an optional config file and PAIRGEN_*
// environment variables into viper. Explicit flags win over the file,
// the file wins over flag defaults.
func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pairgen")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pairgen"))
		}
	}
	viper.SetEnvPrefix("PAIRGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	initLogger(viper.GetBool("verbose"))

	if err := viper.ReadInConfig(); err == nil {
		logger.WithField("file", viper.ConfigFileUsed()).Debug("loaded config file")
	}
}

func initLogger(verbose bool) {
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}
