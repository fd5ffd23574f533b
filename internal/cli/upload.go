package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"momentflow/internal/config"
	"momentflow/internal/ingest"
	"momentflow/internal/media"
	"momentflow/internal/moment"
	"momentflow/internal/source"
	"momentflow/internal/upload"
)

type uploadOptions struct {
	title        string
	description  string
	tags         []string
	contentType  string
	profile      string
	pollInterval time.Duration
	timeout      time.Duration
}

type uploadOutput struct {
	Key      media.Key       `json:"key"`
	Attempts int             `json:"attempts"`
	Moment   json.RawMessage `json:"moment,omitempty"`
}

func (a *app) newUploadCmd() *cobra.Command {
	opts := &uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload <path|s3://bucket/key>",
		Short: "Upload a file, wait for processing and create a moment",
		Long: `Upload a file, wait for processing and create a moment.

Examples:
  momentflow upload beach.jpg --title "Beach"
  momentflow upload s3://photos/2024/beach.jpg --tag summer --tag family
  momentflow upload clip.mov --profile video --timeout 5m`,
		Args: cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			return a.runUpload(cmd, args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "Moment title (defaults to the file name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Moment description")
	cmd.Flags().StringSliceVar(&opts.tags, "tag", nil, "Moment tag, repeatable")
	cmd.Flags().StringVar(&opts.contentType, "content-type", "", "Payload content type (sniffed when empty)")
	cmd.Flags().StringVar(&opts.profile, "profile", "default", "Upload profile name")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", 0, "Status poll interval (overrides MOMENTFLOW_POLL_INTERVAL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Readiness timeout (overrides MOMENTFLOW_TIMEOUT)")
	return cmd
}

func (a *app) runUpload(cmd *cobra.Command, ref string, opts *uploadOptions) error {
	ctx := cmd.Context()

	profiles, err := config.LoadProfileConfig(a.cfg.ProfileConfigPath)
	if err != nil {
		return err
	}

	file, err := source.NewLoader(a.newObjects).Load(ctx, ref)
	if err != nil {
		return err
	}

	publisher, err := a.newPublisher(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close publisher")
		}
	}()

	t := a.newTransport(a.cfg, a.logger)
	uploads := upload.NewService(t, a.logger)
	pipeline := ingest.NewPipeline(ingest.Components{
		Slots:     uploads,
		Uploader:  uploads,
		Validator: uploads,
		Poller:    a.newPoller(t, opts.pollInterval, opts.timeout),
		Registrar: moment.NewRegistrar(t, a.logger),
		Publisher: publisher,
	}, a.logger)

	contentType := opts.contentType
	if contentType == "" {
		contentType = file.ContentType
	}
	title := opts.title
	if title == "" {
		title = file.Name
	}

	result, err := pipeline.Run(ctx, &ingest.Request{
		Source:      ref,
		Payload:     file.Data,
		ContentType: contentType,
		Profile:     profiles.GetProfile(opts.profile),
		Moment: moment.Input{
			Title:       title,
			Description: opts.description,
			Tags:        opts.tags,
		},
	})
	if err != nil {
		return err
	}

	out := uploadOutput{Key: result.Key, Attempts: result.Attempts}
	if result.Moment != nil {
		out.Moment = momentJSON(result.Moment.Raw)
	}
	return a.printJSON(out)
}

// momentJSON embeds the service's record as is, or as a JSON string when the
// body is not valid JSON.
func momentJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return quoted
}
