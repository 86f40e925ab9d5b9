package checkout

type State string

const (
	StateIdle                 State = "IDLE"
	StateLoadingReferenceData State = "LOADING_REFERENCE_DATA"
	StateReady                State = "READY"
	StateSubmitting           State = "SUBMITTING"
	StateSubmitted            State = "SUBMITTED"
	StateSubmitFailed         State = "SUBMIT_FAILED"
)

// HasReferenceData reports whether summaries can be rendered in this state.
func (s State) HasReferenceData() bool {
	return s == StateReady || s == StateSubmitting || s == StateSubmitted || s == StateSubmitFailed
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
