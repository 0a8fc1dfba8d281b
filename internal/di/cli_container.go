package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	InputFile string
	Kind      string
	Key       string

	// Actions
	Save  bool
	Sweep bool

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.InputFile, "file", "", "File to classify and extract")
	flag.StringVar(&flags.Kind, "kind", "file", "Declared input kind (file, email, json)")
	flag.StringVar(&flags.Key, "key", "", "Cache key for the upload (generated if empty)")

	flag.BoolVar(&flags.Save, "save", false, "Save the extraction to the durable record store")
	flag.BoolVar(&flags.Sweep, "sweep", false, "Remove expired cache entries before processing")

	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return cliConfig(flags, logger)
	}); err != nil {
		return nil, err
	}

	if err := provideServices(container); err != nil {
		return nil, err
	}
	return container, nil
}

// cliConfig loads the config file when one is named, otherwise defaults. The
// intake is always the CLI one.
func cliConfig(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		loaded, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", loaded.GetViper().ConfigFileUsed()))
		cfg = loaded
	} else {
		cfg = config.NewFromViper(config.NewEmptyViper())
	}

	v := cfg.GetViper()
	v.Set("intake.type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	return cfg, nil
}
