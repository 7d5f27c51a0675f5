package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/httpreq/internal/app"
	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals // Cobra binds request flags directly to this structure.
	requestOptions app.RequestOptions

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "httpreq [flags] {url}",
		Short: "Send an HTTP request and print the response.",
		Long: `httpreq is a CLI tool for sending HTTP requests.
It supports:
- Any standard method, query parameters and custom headers
- Raw, JSON, URL-encoded and streamed file bodies
- Multipart uploads with file parts
- Basic and bearer authorization, client certificates and proxies
- Speed limits, progress bars and JSON path extraction from responses

Relative URLs are resolved against the base URL from the configuration file.`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			requestOptions.URL = args[0]

			if err := app.ExecuteRootCommand(cmd.Context(), appConfig, &requestOptions, os.Stdout); err != nil {
				logger.Fatalf(cmd.Context(), "Request failed: %v", err)
			}
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits,funlen // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	// Request flags.
	rootCmdFlags.StringVarP(&requestOptions.Method, "request", "X", "",
		"request method (default is POST with a body and GET without).")
	rootCmdFlags.StringArrayVarP(&requestOptions.Headers, "header", "H", nil,
		"add a header, for example: 'Accept: application/json' (repeatable).")
	rootCmdFlags.StringArrayVarP(&requestOptions.Params, "param", "q", nil,
		"add a query parameter, for example: 'page=2' (repeatable).")
	rootCmdFlags.StringVarP(&requestOptions.Data, "data", "d", "",
		"request body, '@file' to stream a file or '@-' to read standard input.")
	rootCmdFlags.StringArrayVarP(&requestOptions.Form, "form", "F", nil,
		"add a multipart field: 'name=value' or 'name=@file[;type=mime]' (repeatable).")
	rootCmdFlags.BoolVar(&requestOptions.JSON, "json", false,
		"send the body as JSON.")
	rootCmdFlags.BoolVar(&requestOptions.Blob, "blob", false,
		"send the body as binary data.")
	rootCmdFlags.StringVarP(&requestOptions.User, "user", "u", "",
		"basic authorization credentials as 'user:password'.")
	rootCmdFlags.StringVar(&requestOptions.Bearer, "bearer", "",
		"bearer authorization token.")
	rootCmdFlags.BoolVarP(&requestOptions.Include, "include", "i", false,
		"print the status line and response headers.")
	rootCmdFlags.StringVarP(&requestOptions.Output, "output", "o", "",
		"save the response body to a file.")
	rootCmdFlags.StringVar(&requestOptions.Query, "query", "",
		"print only the value at a JSON path, for example: 'data.items.#.id'.")
	rootCmdFlags.BoolVar(&requestOptions.Progress, "progress", false,
		"show upload and download progress bars.")

	// Configuration overrides.
	rootCmdFlags.String("base-url", "", "base URL for relative request URLs.")
	rootCmdFlags.StringP("timeout", "m", "", "maximum time for the whole exchange, for example: 30s.")
	rootCmdFlags.String("connect-timeout", "", "maximum time to establish a connection, for example: 10s.")
	rootCmdFlags.BoolP("location", "L", false, "follow redirects.")
	rootCmdFlags.Int64("max-redirs", 0, "maximum number of redirects to follow.")
	rootCmdFlags.BoolP("insecure", "k", false, "skip server certificate verification.")
	rootCmdFlags.String("cacert", "", "PEM bundle of trusted certificate authorities.")
	rootCmdFlags.StringP("proxy", "x", "", "proxy URL.")
	rootCmdFlags.StringP("cert", "E", "", "client certificate file (PEM or PKCS#12).")
	rootCmdFlags.String("cert-password", "", "client certificate password.")
	rootCmdFlags.String("key", "", "client private key file.")
	rootCmdFlags.String("key-password", "", "client private key password.")
	rootCmdFlags.StringP("user-agent", "A", "", "User-Agent header value.")
	rootCmdFlags.String("limit-rate", "", "download speed limit, for example: 500KB, 1MB.")
	rootCmdFlags.String("upload-limit-rate", "", "upload speed limit, for example: 500KB, 1MB.")
	rootCmdFlags.String("log-level", "", "log level: debug, info, warn, error.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

//nolint:cyclop,funlen // Every flag is bound explicitly so that only changed flags override the configuration.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	stringFlags := map[string]*string{
		"base-url":          &cfg.BaseURL,
		"timeout":           &cfg.Timeout,
		"connect-timeout":   &cfg.ConnectTimeout,
		"cacert":            &cfg.CAFile,
		"proxy":             &cfg.ProxyURL,
		"cert":              &cfg.ClientCertificate,
		"cert-password":     &cfg.ClientCertificatePassword,
		"key":               &cfg.ClientKey,
		"key-password":      &cfg.ClientKeyPassword,
		"user-agent":        &cfg.UserAgent,
		"limit-rate":        &cfg.DownloadSpeedLimit,
		"upload-limit-rate": &cfg.UploadSpeedLimit,
		"log-level":         &cfg.LogLevel,
	}

	for name, target := range stringFlags {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			*target, _ = flags.GetString(name)
		}
	}

	if flag := flags.Lookup("location"); flag != nil && flag.Changed {
		cfg.FollowRedirects, _ = flags.GetBool("location")
	}

	if flag := flags.Lookup("insecure"); flag != nil && flag.Changed {
		cfg.InsecureSkipVerify, _ = flags.GetBool("insecure")
	}

	if flag := flags.Lookup("max-redirs"); flag != nil && flag.Changed {
		cfg.MaxRedirects, _ = flags.GetInt64("max-redirs")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	logger.SetLevel(cfg.ParsedLogLevel)

	return nil
}
