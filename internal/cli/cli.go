package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/nifconv/internal/app"
)

// Exit codes used by the command.
const (
	ExitRuntime = 1
	ExitUsage   = 2
	// ExitFailedDocuments reports a finished batch with failed documents.
	ExitFailedDocuments = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nifconv", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nifconv - Converts legacy game asset documents to the modern format.

Usage:
  nifconv [options] [INPUT]

Arguments:
  INPUT
    A single document or a directory searched recursively for documents.

Exit codes:
  0 all documents converted, 1 runtime error, 2 usage error,
  3 the batch finished with failed documents.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Path to the input document or directory.")
	iFlag := flagSet.String("i", "", "Path to the input document or directory (shorthand).")
	outputFlag := flagSet.String("output", "", "Output directory. Empty writes next to each input.")
	oFlag := flagSet.String("o", "", "Output directory (shorthand).")
	profileFlag := flagSet.String("profile", "", "Path to an HCL conversion profile.")
	patternFlag := flagSet.String("pattern", "", "Glob selecting documents inside the input directory.")
	workersFlag := flagSet.Int("workers", 0, "Number of documents converted concurrently. 0 uses the profile or one per CPU.")
	auditFlag := flagSet.Bool("audit", false, "Report source fields that no rule read.")
	compressFlag := flagSet.Bool("compress", false, "Write zstd compressed outputs.")
	ledgerFlag := flagSet.String("ledger", "", "SQLite ledger used to skip unchanged documents.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health and progress server. 0 is disabled.")
	notifyURLFlag := flagSet.String("notify-url", "", "Socket.IO server receiving progress events.")
	notifyNSFlag := flagSet.String("notify-namespace", "/", "Socket.IO namespace for progress events.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	// Booleans left off the command line stay nil so the profile can set them.
	var audit, compress *bool
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "audit":
			audit = auditFlag
		case "compress":
			compress = compressFlag
		}
	})

	path := firstNonEmpty(*inputFlag, *iFlag)
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, usageError("expected at most one INPUT argument, got %d", flagSet.NArg())
	}
	slog.Debug("Input path determined.", "path", path)

	if path == "" {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:       path,
		OutputPath:      firstNonEmpty(*outputFlag, *oFlag),
		ProfilePath:     *profileFlag,
		Pattern:         *patternFlag,
		Workers:         *workersFlag,
		Audit:           audit,
		Compress:        compress,
		LedgerPath:      *ledgerFlag,
		NotifyURL:       *notifyURLFlag,
		NotifyNamespace: *notifyNSFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
