package cli

import (
	"time"

	"github.com/spf13/cobra"

	"momentflow/internal/media"
)

type statusOutput struct {
	Key      media.Key    `json:"key"`
	Status   media.Status `json:"status"`
	Attempts int          `json:"attempts,omitempty"`
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <key>",
		Short: "Probe the processing status of an uploaded media key once",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			key := media.Key(args[0])
			prober := media.NewProber(a.newTransport(a.cfg, a.logger), a.logger)
			return a.printJSON(statusOutput{Key: key, Status: prober.Status(cmd.Context(), key)})
		}),
	}
}

func (a *app) newWaitCmd() *cobra.Command {
	var pollInterval, timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait <key>",
		Short: "Wait until an uploaded media key is processed",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			key := media.Key(args[0])
			poller := a.newPoller(a.newTransport(a.cfg, a.logger), pollInterval, timeout)
			attempts, err := poller.WaitUntilReady(cmd.Context(), key)
			if err != nil {
				return err
			}
			return a.printJSON(statusOutput{Key: key, Status: media.StatusProcessed, Attempts: attempts})
		}),
	}

	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Status poll interval (overrides MOMENTFLOW_POLL_INTERVAL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Readiness timeout (overrides MOMENTFLOW_TIMEOUT)")
	return cmd
}
