package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	defaultThreshold = 128
	envPrefix        = "IMG2BIN"
)

// initConfig layers .env, IMG2BIN_* variables and an optional config.toml
// under the flags already bound to v. Config problems are warnings.
func initConfig(v *viper.Viper, cfgFile string, errOut io.Writer) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "img2bin"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(errOut, "Warning: error reading config file: %v\n", err)
		}
		return
	}
	fmt.Fprintln(errOut, "Using config file:", v.ConfigFileUsed())
}

// thresholdFrom reads the effective threshold. Any integer is accepted;
// only unparseable values are rejected.
func thresholdFrom(v *viper.Viper) (int, error) {
	raw := v.Get("threshold")
	t, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %v: %w", raw, err)
	}
	return t, nil
}
