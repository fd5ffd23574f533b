// Package cli implements the momentflow command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"momentflow/internal/config"
	"momentflow/internal/ingest"
	"momentflow/internal/logger"
	"momentflow/internal/media"
	"momentflow/internal/metrics"
	"momentflow/internal/notify"
	"momentflow/internal/s3"
	"momentflow/internal/source"
	"momentflow/internal/transport"
)

const pushJob = "momentflow"

// Transport is what every command talks to the service through.
type Transport interface {
	Do(ctx context.Context, req *transport.Request) ([]byte, error)
}

// app carries state shared by all commands. The constructor fields are
// swapped out by tests.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
	errOut io.Writer

	loadConfig   func() (*config.Config, error)
	newTransport func(cfg *config.Config, logger zerolog.Logger) Transport
	newPublisher func(cfg *config.Config) (notify.Publisher, error)
	newObjects   source.ObjectGetterFactory
}

func newApp() *app {
	a := &app{
		out:        os.Stdout,
		errOut:     os.Stderr,
		loadConfig: config.Load,
		newTransport: func(cfg *config.Config, logger zerolog.Logger) Transport {
			return transport.NewClient(transport.Config{
				BaseURL: cfg.BaseURL,
				APIKey:  cfg.APIKey,
				Timeout: cfg.HTTPTimeout,
			}, logger)
		},
		newPublisher: func(cfg *config.Config) (notify.Publisher, error) {
			if cfg.RabbitMQURL == "" {
				return notify.Noop{}, nil
			}
			return notify.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		},
	}
	a.newObjects = func(ctx context.Context) (source.ObjectGetter, error) {
		return s3.NewClient(ctx, a.cfg.S3Region, a.cfg.AWSAccessKey, a.cfg.AWSSecretKey, a.cfg.S3Endpoint)
	}
	return a
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context) error {
	return newApp().execute(ctx, os.Args[1:])
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.pushMetrics()
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "momentflow",
		Short:         "Upload media and register it as a moment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(a.newUploadCmd())
	root.AddCommand(a.newStatusCmd())
	root.AddCommand(a.newWaitCmd())
	return root
}

// withService wraps the RunE of a command that talks to the media service:
// configuration and the API key are required only there, so help and
// completion work without them.
func (a *app) withService(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
		a.cfg = cfg
		a.logger = logger.NewWithWriter(a.errOut, cfg.LogLevel, cfg.LogFormat)
		return run(cmd, args)
	}
}

func (a *app) pushMetrics() {
	if a.cfg == nil || a.cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, a.cfg.PushgatewayURL, pushJob); err != nil {
		a.logger.Warn().Err(err).Msg("failed to push metrics")
	}
}

// newPoller applies flag overrides on top of the configured timing.
func (a *app) newPoller(t Transport, interval, timeout time.Duration) *media.Poller {
	if interval <= 0 {
		interval = a.cfg.PollInterval
	}
	if timeout <= 0 {
		timeout = a.cfg.Timeout
	}
	return media.NewPoller(
		media.NewProber(t, a.logger),
		media.WithPollInterval(interval),
		media.WithTimeout(timeout),
		media.WithLogger(a.logger),
	)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Exit codes by failure class.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitValidation   = 2
	ExitInvalidMedia = 3
	ExitTimeout      = 4
	ExitCanceled     = 130
)

// ExitCode maps a command error onto a process exit status.
func ExitCode(err error) int {
	switch ingest.Classify(err) {
	case ingest.KindNone:
		return ExitOK
	case ingest.KindValidation:
		return ExitValidation
	case ingest.KindInvalidMedia:
		return ExitInvalidMedia
	case ingest.KindTimeout:
		return ExitTimeout
	case ingest.KindCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}

// Describe renders err with its failure class for the terminal.
func Describe(err error) string {
	kind := ingest.Classify(err)
	if kind == ingest.KindUnknown {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", kind, err)
}
