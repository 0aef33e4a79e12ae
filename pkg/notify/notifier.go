package notify

import (
	"log/slog"

	"github.com/nna-wms/wmsconsole/pkg/crud"
	"github.com/nna-wms/wmsconsole/pkg/logging"
)

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger discards everything.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: logging.Component(log, "notify")}
}

// NotifySuccess logs at info level.
func (n *LogNotifier) NotifySuccess(message string) {
	n.log.Info(message, "kind", KindSuccess)
}

// NotifyError logs at warn level.
func (n *LogNotifier) NotifyError(message string) {
	n.log.Warn(message, "kind", KindError)
}

// Multi delivers each notification to every notifier in order.
type Multi []crud.Notifier

// NotifySuccess implements crud.Notifier.
func (m Multi) NotifySuccess(message string) {
	for _, n := range m {
		n.NotifySuccess(message)
	}
}

// NotifyError implements crud.Notifier.
func (m Multi) NotifyError(message string) {
	for _, n := range m {
		n.NotifyError(message)
	}
}

var (
	_ crud.Notifier = (*Hub)(nil)
	_ crud.Notifier = (*LogNotifier)(nil)
	_ crud.Notifier = Multi(nil)
)
