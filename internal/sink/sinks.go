package sink

import (
	"github.com/ArnoldoM23/pess/internal/contract"
)

// FromConfig builds the notification sinks enabled by the validated config.
// Disabled sinks are still constructed so emission results report them
// consistently; the emitter skips sinks whose Enabled() is false.
func FromConfig(cfg *contract.Config) []contract.NotifySink {
	return []contract.NotifySink{
		NewWebhookSink(cfg.WebhookURL),
		NewLogSink(cfg.NotifyLog),
	}
}
