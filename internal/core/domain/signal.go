package domain

// SignalOutcome is what the trigger claims happened. Only a hint: success
// still requires gateway verification, and cancel is honored only while
// the transaction is PENDING.
type SignalOutcome string

const (
	OutcomeSuccess SignalOutcome = "success"
	OutcomeCancel  SignalOutcome = "cancel"
	OutcomeError   SignalOutcome = "error"
)

// SignalSource identifies which delivery path produced the trigger. The
// same payment commonly produces several signals from different sources;
// settlement treats them all identically.
type SignalSource string

const (
	SourceBrowserRedirect SignalSource = "browser_redirect"
	SourceDeepLink        SignalSource = "deep_link"
	SourceResumePoll      SignalSource = "resume_poll"
	SourcePostMessage     SignalSource = "post_message"
)

// PaymentSignal is a structured settlement trigger. Reference is the only
// field settlement trusts; Outcome and Source are routing and telemetry.
type PaymentSignal struct {
	Reference string
	Outcome   SignalOutcome
	Source    SignalSource
}

// ValidOutcome reports whether o is a known outcome value.
func ValidOutcome(o SignalOutcome) bool {
	switch o {
	case OutcomeSuccess, OutcomeCancel, OutcomeError:
		return true
	}
	return false
}

// ValidSource reports whether s is a known source value.
func ValidSource(s SignalSource) bool {
	switch s {
	case SourceBrowserRedirect, SourceDeepLink, SourceResumePoll, SourcePostMessage:
		return true
	}
	return false
}
