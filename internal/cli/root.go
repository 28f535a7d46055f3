// internal/cli/root.go
package nvsbench

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/mwiater/nvsbench/internal/appconfig"
	"github.com/mwiater/nvsbench/internal/ingest"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// quietLogAnnotation marks commands whose stdout is data; their log lines go
// to the log file only.
const quietLogAnnotation = "nvsbench/quiet-log"

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

// stringSettings are the persistent flags that mirror string config keys.
var stringSettings = []string{"resultsDir", "outputPath", "datasetsPath", "methodsPath", "marker", "imageBaseURL", "publicDir", "logFile"}

var rootCmd = &cobra.Command{
	Use:           "nvsbench",
	Short:         "nvsbench: novel view synthesis benchmark leaderboard",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		flags := cmd.Root().PersistentFlags()
		if !flags.Changed("debug") {
			_ = flags.Set("debug", strconv.FormatBool(viper.GetBool("debug")))
		}
		for _, name := range stringSettings {
			if !flags.Changed(name) {
				_ = flags.Set(name, viper.GetString(name))
			}
		}

		// 3) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults).
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		currentConfig = &cfg

		initLog := logging.Init
		if cmd.Annotations[quietLogAnnotation] == "true" {
			initLog = logging.InitQuiet
		}
		if err := initLog(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		if cfg.Debug {
			logging.LogEvent("[CONFIG] %+v", cfg)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (JSON or YAML)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("resultsDir", "", "directory holding <method>/<dataset>/<scene>/result.json files")
	rootCmd.PersistentFlags().String("outputPath", "", "canonical dataset written by ingest and read by every view")
	rootCmd.PersistentFlags().String("datasetsPath", "", "dataset registry (JSON array)")
	rootCmd.PersistentFlags().String("methodsPath", "", "method registry (JSON array)")
	rootCmd.PersistentFlags().String("marker", "", "result file name")
	rootCmd.PersistentFlags().String("imageBaseURL", "", "base URL for comparison images")
	rootCmd.PersistentFlags().String("publicDir", "", "local directory mirroring published images")
	rootCmd.PersistentFlags().String("logFile", "", "log file path")

	// Bind flags to Viper keys (flags override config)
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	for _, name := range stringSettings {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	viper.SetDefault("debug", false)
	viper.SetDefault("listenAddr", ":8080")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// getConfig returns the merged configuration, or defaults when no command
// has run yet.
func getConfig() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}

// loadRegistry reads both registries named by the configuration.
func loadRegistry(cfg *appconfig.Config) (*registry.Registry, error) {
	return registry.Load(cfg.DatasetRegistryPath(), cfg.MethodRegistryPath())
}

// loadBoard reads the canonical dataset and the registries.
func loadBoard(cfg *appconfig.Config) (*leaderboard.Board, error) {
	records, err := ingest.Load(cfg.CanonicalPath())
	if err != nil {
		return nil, fmt.Errorf("%w (run 'nvsbench ingest' first)", err)
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return leaderboard.NewBoard(records, reg), nil
}

// DebugEnabled reflects the merged Viper state.
func DebugEnabled() bool { return viper.GetBool("debug") }
