package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	server    string
	device    string
	dataDir   string
	salt      string
	wordsFile string
	maxTurns  int
	strict    bool
	verbose   bool
}

func (c *Config) validate() error {
	if c.server != "" {
		u, err := url.Parse(c.server)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server URL: %q", c.server)
		}
	}
	if c.maxTurns < 0 {
		return errors.New("--max-turns must be >= 0")
	}
	if c.dataDir == "" {
		return errors.New("--data-dir is required")
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "swapple")
	}
	return ".swapple"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SWAPPLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "swapple",
		Short:         "Change or swap letters to reach today's target word.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if cfg.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return a.play(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "", "server base URL; empty plays offline (env: SWAPPLE_SERVER)")
	fs.StringVar(&cfg.device, "device", "", "device id sent to the server; generated once when empty (env: SWAPPLE_DEVICE)")
	fs.StringVarP(&cfg.dataDir, "data-dir", "d", defaultDataDir(), "directory for local stats (env: SWAPPLE_DATA_DIR)")
	fs.StringVar(&cfg.salt, "salt", "local_dev_salt", "daily rotation salt for offline play (env: SWAPPLE_SALT)")
	fs.StringVar(&cfg.wordsFile, "words", "", "word list for offline play; embedded list when empty (env: SWAPPLE_WORDS)")
	fs.IntVar(&cfg.maxTurns, "max-turns", 0, "end the game as lost after this many moves, 0 = uncapped (env: SWAPPLE_MAX_TURNS)")
	fs.BoolVar(&cfg.strict, "strict", false, "report dictionary outages instead of rejecting the word (env: SWAPPLE_STRICT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug logs (env: SWAPPLE_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("swapple v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
