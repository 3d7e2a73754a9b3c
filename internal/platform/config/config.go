package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PANEL_STORE_PATH.
const EnvPrefix = "PANEL"

// Load reads .env files into the process environment. A missing file is not
// an error; system env and defaults still apply. With no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Init points viper at the environment and, when cfgFile is set, at that
// config file. Keys map to variables by upper-casing and replacing "." and
// "-" with "_".
func Init(cfgFile string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// Flags is a group of settings bound to command-line flags.
type Flags interface {
	Init(cmd *cobra.Command) error
	Set()
}

// bind registers a persistent flag with viper under the same key.
func bind(cmd *cobra.Command, key string) error {
	return viper.BindPFlag(key, cmd.PersistentFlags().Lookup(key))
}
