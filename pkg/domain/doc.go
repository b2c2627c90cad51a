// Package domain contains the entities shared by the moderation pipeline:
// inbound chat messages, classification verdicts and sanction outcomes.
// They carry no platform or infrastructure concerns.
package domain
