package domain

// Verdict is the outcome of classifying one resolved URL.
type Verdict struct {
	// Scam is true when the oracle flagged Instance.
	Scam bool
	// Candidate is the URL as it appeared in the message.
	Candidate string
	// Instance is the resolved URL the oracle was asked about.
	Instance string
}

// Outcome reports what the officer did for a detected scam.
type Outcome int

const (
	// OutcomeAlreadySanctioned means the author is in cooldown; nothing was sent.
	OutcomeAlreadySanctioned Outcome = iota + 1
	// OutcomeChannelUnavailable means the audit channel could not be resolved.
	OutcomeChannelUnavailable
	// OutcomeNotified means the audit notification was attempted but no ban took effect.
	OutcomeNotified
	// OutcomeNotifiedAndSanctioned means the ban succeeded and the author entered cooldown.
	OutcomeNotifiedAndSanctioned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadySanctioned:
		return "already_sanctioned"
	case OutcomeChannelUnavailable:
		return "channel_unavailable"
	case OutcomeNotified:
		return "notified"
	case OutcomeNotifiedAndSanctioned:
		return "notified_and_sanctioned"
	default:
		return "unknown"
	}
}
