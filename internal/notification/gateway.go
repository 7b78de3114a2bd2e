package notification

import "context"

// Message is a rendered outbound email.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
	To       string
	ToName   string
	From     string
}

// Outcome reports a successful send. MessageID is an opaque token usable for
// tracing the delivery later.
type Outcome struct {
	MessageID string
}

// Gateway abstracts the email-sending capability. The case service only
// depends on this interface; tests inject fakes.
type Gateway interface {
	// Configured reports whether the gateway can attempt sends at all.
	Configured() bool
	// Send delivers the message or returns an error describing why it could
	// not. Implementations must honor ctx cancellation and deadlines.
	Send(ctx context.Context, msg Message) (Outcome, error)
}
