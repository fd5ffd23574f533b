package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"momentflow/internal/config"
	"momentflow/internal/media"
	"momentflow/internal/metrics"
	"momentflow/internal/moment"
	"momentflow/internal/notify"
	"momentflow/internal/prepare"
	"momentflow/internal/upload"
)

// Stage names, also used as metric labels.
const (
	StagePrepare  = "prepare"
	StageSlot     = "slot"
	StageUpload   = "upload"
	StageWait     = "wait"
	StageRegister = "register"
)

type SlotProvider interface {
	GetUploadDestination(ctx context.Context) (*upload.Destination, error)
}

type Uploader interface {
	Upload(ctx context.Context, dest *upload.Destination, payload []byte, contentType string) error
}

type PayloadValidator interface {
	ValidatePayload(payload []byte, contentType string, profile *config.Profile) error
}

type ReadinessWaiter interface {
	WaitUntilReady(ctx context.Context, key media.Key) (int, error)
}

type MomentCreator interface {
	CreateMoment(ctx context.Context, input *moment.Input) (*moment.Record, error)
}

// Components are the collaborators of a Pipeline. Publisher may be nil.
type Components struct {
	Slots     SlotProvider
	Uploader  Uploader
	Validator PayloadValidator
	Poller    ReadinessWaiter
	Registrar MomentCreator
	Publisher notify.Publisher
}

type Pipeline struct {
	Components
	logger zerolog.Logger
}

func NewPipeline(c Components, logger zerolog.Logger) *Pipeline {
	if c.Publisher == nil {
		c.Publisher = notify.Noop{}
	}
	return &Pipeline{
		Components: c,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Request describes one ingest. ContentType is sniffed from Payload when
// empty. Moment is a template; its MediaKey is set by the pipeline.
type Request struct {
	Source      string
	Payload     []byte
	ContentType string
	Profile     *config.Profile
	Moment      moment.Input
}

type Result struct {
	Key      media.Key
	Moment   *moment.Record
	Attempts int
	Stages   map[string]time.Duration
}

// Run executes prepare, slot, upload, wait and register in order. The first
// failing stage aborts the run; its error is returned unchanged so callers
// can Classify it.
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	result := &Result{Stages: make(map[string]time.Duration)}
	log := p.logger.With().Str("source", req.Source).Logger()

	err := p.run(ctx, req, result, log)
	p.publish(ctx, req, result, err, log)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, req *Request, result *Result, log zerolog.Logger) error {
	payload := prepare.Payload{Data: req.Payload, ContentType: req.ContentType}
	profile := req.Profile
	if profile == nil {
		profile = config.DefaultProfile()
	}

	err := p.stage(result, StagePrepare, func() error {
		if payload.ContentType == "" {
			payload.ContentType = prepare.DetectContentType(payload.Data)
		}
		prepared, err := prepare.Image(payload, profile)
		if err != nil {
			return fmt.Errorf("failed to prepare payload: %w", err)
		}
		payload = prepared
		if p.Validator == nil {
			return nil
		}
		return p.Validator.ValidatePayload(payload.Data, payload.ContentType, profile)
	})
	if err != nil {
		return err
	}

	var dest *upload.Destination
	err = p.stage(result, StageSlot, func() error {
		var err error
		dest, err = p.Slots.GetUploadDestination(ctx)
		return err
	})
	if err != nil {
		return err
	}
	result.Key = dest.Key
	log = log.With().Str("media_key", string(dest.Key)).Logger()

	err = p.stage(result, StageUpload, func() error {
		return p.Uploader.Upload(ctx, dest, payload.Data, payload.ContentType)
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("size_bytes", len(payload.Data)).
		Str("content_type", payload.ContentType).
		Msg("payload uploaded, waiting for processing")

	err = p.stage(result, StageWait, func() error {
		var err error
		result.Attempts, err = p.Poller.WaitUntilReady(ctx, dest.Key)
		return err
	})
	if err != nil {
		return err
	}

	input := req.Moment
	input.MediaKey = dest.Key
	return p.stage(result, StageRegister, func() error {
		var err error
		result.Moment, err = p.Registrar.CreateMoment(ctx, &input)
		return err
	})
}

func (p *Pipeline) stage(result *Result, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	result.Stages[name] = elapsed
	status := "ok"
	if err != nil {
		status = string(Classify(err))
	}
	metrics.StageDuration.WithLabelValues(name, status).Observe(elapsed.Seconds())
	return err
}

func (p *Pipeline) publish(ctx context.Context, req *Request, result *Result, runErr error, log zerolog.Logger) {
	data := notify.EventData{
		MediaKey: string(result.Key),
		Status:   notify.StatusSucceeded,
		Source:   req.Source,
	}
	if result.Moment != nil {
		data.MomentID = result.Moment.ID
	}
	if runErr != nil {
		data.Status = notify.StatusFailed
		data.ErrorKind = string(Classify(runErr))
		data.ErrorMsg = runErr.Error()
	}

	// A canceled run still reports its outcome.
	if err := p.Publisher.Publish(context.WithoutCancel(ctx), notify.NewEvent(data)); err != nil {
		log.Warn().Err(err).Msg("failed to publish ingest event")
	}
}
