package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/macrograph/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("macrograph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
macrograph - run named macros against elements of a visual graph.

Usage:
  macrograph [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    A .hcl file or a directory containing .hcl files. May be repeated.

Examples:
  macrograph -list config/
  macrograph -scene board.excalidraw -macro path -input 3kQ1
  macrograph -serve -listen :8080 config/

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths []string
	flagSet.Func("config", "Path to a config file or directory. May be repeated.", func(v string) error {
		configPaths = append(configPaths, v)
		return nil
	})
	macroFlag := flagSet.String("macro", "", "Name of the macro to execute.")
	sceneFlag := flagSet.String("scene", "", "Path to a scene document (Excalidraw JSON or an element array).")
	sceneIDFlag := flagSet.String("scene-id", "", "Id of a scene in the configured scene store.")
	inputFlag := flagSet.String("input", "", "Id of the input element.")
	outputFlag := flagSet.String("output", "", "Id of the output element (optional).")
	labelFlag := flagSet.String("label", "", "Label passed to the macro (optional).")
	listFlag := flagSet.Bool("list", false, "List registered macros and exit.")
	serveFlag := flagSet.Bool("serve", false, "Serve the HTTP API.")
	listenFlag := flagSet.String("listen", "", "Address for the HTTP API. Overrides server.listen.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")
	configPaths = append(configPaths, flagSet.Args()...)

	if *macroFlag == "" && !*listFlag && !*serveFlag {
		slog.Debug("No action requested, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ConfigPaths: configPaths,
		Macro:       *macroFlag,
		ScenePath:   *sceneFlag,
		SceneID:     *sceneIDFlag,
		Input:       *inputFlag,
		Output:      *outputFlag,
		Label:       *labelFlag,
		List:        *listFlag,
		Serve:       *serveFlag,
		Listen:      *listenFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config_paths", len(configPaths))
	return config, false, nil
}
