package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPersonCreated is a no-op.
func (n *NoopRecorder) IncPersonCreated() {}

// IncPersonUpdated is a no-op.
func (n *NoopRecorder) IncPersonUpdated() {}

// IncPersonDeleted is a no-op.
func (n *NoopRecorder) IncPersonDeleted() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected() {}
