/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the cyskel commands. Provides configuration loading,
logging setup and the builders that turn viper settings into pipeline components.
*/

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/cyskel/pkg/cache"
	"github.com/kleascm/cyskel/pkg/core"
	"github.com/kleascm/cyskel/pkg/extract"
	"github.com/kleascm/cyskel/pkg/graph"
	"github.com/kleascm/cyskel/pkg/inference"
	"github.com/kleascm/cyskel/pkg/logging"
	"github.com/kleascm/cyskel/pkg/reporting"
	"github.com/kleascm/cyskel/pkg/symbols"
	"github.com/spf13/viper"
)

// Version is reported by --version and stamped into run summaries
const Version = "1.0.0"

// EnvPrefix prefixes every environment override, e.g. CYSKEL_REPORT_FORMAT
const EnvPrefix = "CYSKEL"

// LoadConfig loads configuration from defaults, the config file and the environment
func LoadConfig() error {
	SetDefaults()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetDefaults registers the built-in value of every configuration key
func SetDefaults() {
	tables := symbols.DefaultConfig()
	viper.SetDefault("symbols.loader_blocklist", tables.LoaderBlocklist)
	viper.SetDefault("symbols.comment_markers", tables.CommentMarkers)
	viper.SetDefault("symbols.compiler_markers", tables.CompilerMarkers)
	viper.SetDefault("symbols.library_suffixes", tables.LibrarySuffixes)
	viper.SetDefault("symbols.library_infixes", tables.LibraryInfixes)
	viper.SetDefault("symbols.source_suffixes", tables.SourceSuffixes)

	viper.SetDefault("extract.min_length", extract.DefaultMinLength)
	viper.SetDefault("extract.only_interesting", false)
	viper.SetDefault("report.format", reporting.FormatSkel)
	viper.SetDefault("batch.include", core.DefaultIncludePatterns)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "custom")
}

// LoggerConfig builds the logger settings from log_level, log_format, log_dir and log_syslog.*
func LoggerConfig() *logging.LoggerConfig {
	config := logging.DefaultLoggerConfig()
	config.Level = logging.LogLevel(strings.ToLower(viper.GetString("log_level")))
	config.Format = logging.LogFormat(strings.ToLower(viper.GetString("log_format")))
	config.OutputDir = viper.GetString("log_dir")
	config.Caller = config.Level == logging.LogLevelDebug

	config.SyslogEnabled = viper.GetBool("log_syslog.enabled")
	config.SyslogNetwork = viper.GetString("log_syslog.network")
	config.SyslogAddress = viper.GetString("log_syslog.address")
	return config
}

// SetupLogging configures the logging system
func SetupLogging() (*logging.Logger, error) {
	logger, err := logging.NewLogger(LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// ruleSpec is the config file shape of a type rule
type ruleSpec struct {
	Substrings []string `mapstructure:"substrings"`
	Type       string   `mapstructure:"type"`
}

// BuildConfig assembles and validates the analysis configuration
func BuildConfig() (core.Config, error) {
	config := core.DefaultConfig()

	// keys are read one by one so a partial symbols section keeps the other defaults
	config.Symbols = symbols.Config{
		LoaderBlocklist: viper.GetStringSlice("symbols.loader_blocklist"),
		CommentMarkers:  viper.GetStringSlice("symbols.comment_markers"),
		CompilerMarkers: viper.GetStringSlice("symbols.compiler_markers"),
		LibrarySuffixes: viper.GetStringSlice("symbols.library_suffixes"),
		LibraryInfixes:  viper.GetStringSlice("symbols.library_infixes"),
		SourceSuffixes:  viper.GetStringSlice("symbols.source_suffixes"),
	}

	config.Collect = extract.Options{
		MinLength:       viper.GetInt("extract.min_length"),
		OnlyInteresting: viper.GetBool("extract.only_interesting"),
	}

	if viper.IsSet("rules") {
		var specs []ruleSpec
		if err := viper.UnmarshalKey("rules", &specs); err != nil {
			return config, fmt.Errorf("failed to decode type rules: %w", err)
		}
		rules := make([]inference.TypeRule, 0, len(specs))
		for i, spec := range specs {
			typ, err := inference.ParseEntityType(spec.Type)
			if err != nil {
				return config, fmt.Errorf("rule %d: %w", i, err)
			}
			rules = append(rules, inference.TypeRule{Substrings: spec.Substrings, Type: typ})
		}
		config.Rules = rules
	}

	config.Report = core.ReportOptions{
		ShowUnknown: viper.GetBool("report.show_unknown"),
		IncludeRaw:  viper.GetBool("report.include_raw"),
		Format:      viper.GetString("report.format"),
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// NewRenderer returns the renderer selected by report.format
func NewRenderer(config core.Config) (reporting.Renderer, error) {
	return reporting.New(config.Report.Format, reporting.OptionsFrom(config.Report))
}

// BuildGraphConfig returns the Neo4j settings
func BuildGraphConfig() graph.Config {
	return graph.Config{
		URI:      viper.GetString("graph.uri"),
		User:     viper.GetString("graph.user"),
		Password: viper.GetString("graph.password"),
		Database: viper.GetString("graph.database"),
	}
}

// pipeline bundles the components shared by analyze and batch
type pipeline struct {
	config   core.Config
	logger   *logging.Logger
	analyzer *core.Analyzer
	renderer reporting.Renderer
	store    *cache.Store
	exporter *graph.Exporter
}

// newPipeline loads configuration and wires the analyzer, cache and exporter
func newPipeline(ctx context.Context) (*pipeline, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return nil, err
	}
	p := &pipeline{logger: logger}

	if p.config, err = BuildConfig(); err != nil {
		p.Close(ctx)
		return nil, err
	}
	if p.renderer, err = NewRenderer(p.config); err != nil {
		p.Close(ctx)
		return nil, err
	}
	if p.analyzer, err = core.NewAnalyzer(p.config, logger.GetLogger()); err != nil {
		p.Close(ctx)
		return nil, err
	}

	if path := viper.GetString("cache.path"); path != "" {
		if p.store, err = cache.Open(path); err != nil {
			p.Close(ctx)
			return nil, err
		}
		p.analyzer.SetCache(p.store)
	}

	if graphConfig := BuildGraphConfig(); graphConfig.Enabled() {
		if p.exporter, err = graph.NewExporter(graphConfig, logger.GetLogger()); err != nil {
			p.Close(ctx)
			return nil, err
		}
		if err := p.exporter.CreateIndexes(ctx); err != nil {
			p.Close(ctx)
			return nil, err
		}
	}

	return p, nil
}

// Close releases the exporter, cache and logger
func (p *pipeline) Close(ctx context.Context) {
	if p.exporter != nil {
		if err := p.exporter.Close(ctx); err != nil {
			p.logger.GetLogger().WithError(err).Warn("Failed to close neo4j driver")
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.GetLogger().WithError(err).Warn("Failed to close result cache")
		}
	}
	p.logger.Close()
}
