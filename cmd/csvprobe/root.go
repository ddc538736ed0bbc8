package main

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/JonMunkholm/csvprobe/internal/config"
	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/logging"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errInvalid makes the process exit non-zero after a report was written for
// a file that failed validation. main does not print it.
var errInvalid = errors.New("one or more files failed validation")

// app carries state shared by all subcommands once PersistentPreRunE ran.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	envFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "csvprobe",
		Short: "Infer column types and find invalid cells in tabular files",
		Long: `csvprobe reads CSV (optionally gzip, zstd or lz4 compressed) and Parquet
files, infers a semantic type for every column, and reports each cell that
does not conform to its column's type.

Settings come from the environment, an optional .env file, and the config
file named by CSVPROBE_CONFIG.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before configuration (ignored when absent)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newMetadataCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// init loads the env file, configuration and logger.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	envErr := godotenv.Load(a.envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	if envErr != nil {
		logger.Debug("no env file loaded", zap.String("path", a.envFile))
	}
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadOptions returns the configured loader settings, overridden by any
// --parse-dates or --delimiter flag set on cmd.
func (a *app) loadOptions(cmd *cobra.Command) (core.LoadOptions, error) {
	opts := core.LoadOptions{
		Delimiter:  a.cfg.Validation.DelimiterRune(),
		ParseDates: a.cfg.Validation.ParseDates,
	}

	flags := cmd.Flags()
	if flags.Changed("parse-dates") {
		v, err := flags.GetBool("parse-dates")
		if err != nil {
			return opts, err
		}
		opts.ParseDates = v
	}
	if flags.Changed("delimiter") {
		d, err := flags.GetString("delimiter")
		if err != nil {
			return opts, err
		}
		r, err := parseDelimiter(d)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = r
	}
	return opts, nil
}

func parseDelimiter(d string) (rune, error) {
	switch {
	case d == `\t`:
		return '\t', nil
	case utf8.RuneCountInString(d) == 1:
		r, _ := utf8.DecodeRuneInString(d)
		return r, nil
	default:
		return 0, fmt.Errorf("--delimiter must be a single character, got %q", d)
	}
}

func addLoadFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("parse-dates", false, "type ISO date and datetime columns as temporal storage on load")
	cmd.Flags().String("delimiter", "", `field separator; detected from the first line when unset (use \t for tab)`)
}

// writeOutput encodes v as JSON followed by a newline.
func writeOutput(w io.Writer, v any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
