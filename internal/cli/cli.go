package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/cwspublish/internal/app"
	"github.com/vk/cwspublish/internal/config"
	"github.com/vk/cwspublish/internal/webstore"
)

// Environment variables read when the matching flag is not given.
const (
	EnvClientID     = "CWS_CLIENT_ID"
	EnvClientSecret = "CWS_CLIENT_SECRET"
	EnvRefreshToken = "CWS_REFRESH_TOKEN"
	EnvExtensionID  = "CWS_EXTENSION_ID"
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
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. Values are taken from flags first,
// then from environ (KEY=VALUE pairs), then from the -config file. It returns
// the validated configuration, a boolean telling the caller to exit cleanly,
// or an *ExitError.
func Parse(args []string, output io.Writer, environ []string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("cwspublish", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
cwspublish - Upload and publish an extension on the Chrome Web Store.

Usage:
  cwspublish <command> [options]

Commands:
  upload    Upload the zip file as the item's new draft.
  publish   Upload, then publish the item.

Credentials default to $`+EnvClientID+`, $`+EnvClientSecret+` and
$`+EnvRefreshToken+`; the item id defaults to $`+EnvExtensionID+`.

Options:
`)
		flagSet.PrintDefaults()
	}

	sourceFlag := flagSet.String("source", "", "Path to the extension zip file.")
	zipFlag := flagSet.String("zip", "", "Path to the extension zip file (alias of -source).")
	idFlag := flagSet.String("extension-id", "", "Store item id of the extension.")
	clientIDFlag := flagSet.String("client-id", "", "OAuth2 client id.")
	clientSecretFlag := flagSet.String("client-secret", "", "OAuth2 client secret.")
	refreshTokenFlag := flagSet.String("refresh-token", "", "OAuth2 refresh token.")
	targetFlag := flagSet.String("target", "", "Publish audience. Options: 'default' or 'trustedTesters'.")
	testersFlag := flagSet.Bool("testers", false, "Publish to trusted testers (same as -target=trustedTesters).")
	configFlag := flagSet.String("config", "", "Path to an HCL config file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	tokenURLFlag := flagSet.String("token-url", "", "Override the OAuth2 token endpoint.")
	apiURLFlag := flagSet.String("api-url", "", "Override the store API base URL.")

	command, rest := splitCommand(args)
	if err := flagSet.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	if command == "" && flagSet.NArg() > 0 {
		command = flagSet.Arg(0)
		rest = flagSet.Args()[1:]
	} else {
		rest = flagSet.Args()
	}
	if len(rest) > 0 {
		return nil, false, usageError("unexpected arguments: %s", strings.Join(rest, " "))
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	if command == "" {
		slog.Debug("No command provided, printing usage and exiting.")
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

	var file config.File
	if *configFlag != "" {
		loaded, err := config.Load(context.Background(), *configFlag, environ)
		if err != nil {
			return nil, false, usageError("%s", err.Error())
		}
		file = *loaded
	}
	if file.Credentials == nil {
		file.Credentials = &config.Credentials{}
	}
	if file.Item == nil {
		file.Item = &config.Item{}
	}

	env := lookupEnv(environ)
	setFlags := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	target, err := webstore.ParseTarget(first(*targetFlag, file.Item.Target))
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}
	if setFlags["testers"] {
		fromBool := webstore.TargetFor(*testersFlag)
		if setFlags["target"] && fromBool != target {
			return nil, false, usageError("-testers=%t conflicts with -target=%s", *testersFlag, *targetFlag)
		}
		target = fromBool
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		Command:      command,
		ClientID:     first(*clientIDFlag, env[EnvClientID], file.Credentials.ClientID),
		ClientSecret: first(*clientSecretFlag, env[EnvClientSecret], file.Credentials.ClientSecret),
		RefreshToken: first(*refreshTokenFlag, env[EnvRefreshToken], file.Credentials.RefreshToken),
		Source:       first(*sourceFlag, *zipFlag, file.Item.Source),
		ExtensionID:  first(*idFlag, env[EnvExtensionID], file.Item.ID),
		Target:       target,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		TokenURL:     *tokenURLFlag,
		APIBaseURL:   *apiURLFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "command", cfg.Command, "extension_id", cfg.ExtensionID)
	return cfg, false, nil
}

// splitCommand peels a leading command word off args so flags may follow it.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func lookupEnv(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
