package workers

import (
	"context"
	"log/slog"

	"github.com/shekharshaurya-coder/finalWork/contract"
	"github.com/shekharshaurya-coder/finalWork/domain"
)

// NotifierWorker drains the offline hook: every message that was created
// while its recipient had no live connection ends up here, and is handed to
// the notification collaborator. This subsystem only decides reachability;
// scheduling and dispatching offline notifications happens elsewhere.
type NotifierWorker struct {
	log      *slog.Logger
	offline  <-chan domain.Message
	notifier contract.OfflineNotifier
}

func NewNotifierWorker(log *slog.Logger, offline <-chan domain.Message,
	notifier contract.OfflineNotifier) *NotifierWorker {
	return &NotifierWorker{log: log, offline: offline, notifier: notifier}
}

func (w *NotifierWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping offline notifier")
			return nil
		case message, ok := <-w.offline:
			if !ok {
				w.log.Debug("Offline hook channel closed")
				return nil
			}
			if err := w.notifier.Notify(ctx, message); err != nil {
				w.log.Warn("Offline notification hook failed",
					"message_id", message.ID,
					"recipient_id", message.RecipientID,
					"error", err)
			}
		}
	}
}

// LogNotifier is the default collaborator: it only records that a dispatch
// should be scheduled.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, message domain.Message) error {
	n.Log.Info("Recipient offline, notification dispatch left to collaborator",
		"message_id", message.ID,
		"recipient_id", message.RecipientID)
	return nil
}
