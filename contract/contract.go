//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
)

// EventSink is one live-connection handle. Consume must not block the caller
// beyond the sink's own buffering policy; a full or closed sink returns an
// error and the event is lost for that connection.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry is the connection registry. Owned exclusively by this subsystem;
// external components read presence through Snapshot/IsOnline only.
type IRegistry interface {
	Register(userID string, sink EventSink) (previous EventSink, replaced bool)
	Lookup(userID string) (EventSink, bool)
	Unregister(userID string, sink EventSink) bool
	Snapshot() []string
	IsOnline(userID string) bool
}

// IVerifier is the identity collaborator: token in, identity out.
type IVerifier interface {
	Verify(token string) (domain.User, error)
}

// OfflineNotifier receives messages created while their recipient had no
// live connection. Dispatching the actual notification happens elsewhere.
type OfflineNotifier interface {
	Notify(ctx context.Context, message domain.Message) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
