package media

// Key identifies one media item from slot issuance onward.
type Key string

// Status is the service's view of a media item. Values other than the
// constants below are passed through verbatim and treated as not terminal.
type Status string

const (
	StatusInProcess Status = "IN_PROCESS"
	StatusProcessed Status = "PROCESSED"
	StatusInvalid   Status = "INVALID"
)

// ProbeResult is either an observed status or a transient failure.
// A transient failure never aborts polling; Effective folds it into
// StatusInProcess.
type ProbeResult struct {
	status    Status
	transient error
}

func Observed(status Status) ProbeResult {
	return ProbeResult{status: status}
}

func Transient(err error) ProbeResult {
	return ProbeResult{transient: err}
}

// IsTransient reports whether the probe failed to observe a status.
func (r ProbeResult) IsTransient() bool {
	return r.transient != nil
}

// Err returns the absorbed failure of a transient result, nil otherwise.
func (r ProbeResult) Err() error {
	return r.transient
}

func (r ProbeResult) Effective() Status {
	if r.transient != nil {
		return StatusInProcess
	}
	return r.status
}

// statusResponse is the subset of GET /media/{key} the client reads.
type statusResponse struct {
	Status Status `json:"status"`
}
