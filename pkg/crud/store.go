package crud

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nna-wms/wmsconsole/pkg/logging"
)

// Action names reported to loggers and observers.
const (
	ActionFetchAll  = "fetch_all"
	ActionFetchByID = "fetch_by_id"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
)

// Service is the per-entity REST contract a Store orchestrates.
// Implementations report failures as errors whose message is shown to users.
type Service[TData, TCreate, TUpdate any] interface {
	FetchAll(ctx context.Context) ([]TData, error)
	FetchByID(ctx context.Context, id int64) (TData, error)
	Create(ctx context.Context, payload TCreate) (TData, error)
	Update(ctx context.Context, id int64, payload TUpdate) (TData, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Notifier receives user-facing success and failure messages.
// Calls are fire-and-forget.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Observer is told about every finished action. Used for metrics.
type Observer interface {
	ObserveAction(store, action string, success bool, elapsed time.Duration)
}

// Result is returned by FetchAll, CreateData and UpdateData.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// State is a point-in-time copy of a store's fields.
type State[TData any] struct {
	List      []TData `json:"list"`
	Detail    *TData  `json:"detail"`
	IsLoading bool    `json:"isLoading"`
	Error     string  `json:"error,omitempty"`
}

// Store holds list/detail/loading/error state for one entity type.
type Store[TData, TCreate, TUpdate any] struct {
	name     string
	service  Service[TData, TCreate, TUpdate]
	notifier Notifier
	observer Observer
	log      *slog.Logger

	mu      sync.RWMutex
	list    []TData
	detail  *TData
	loading bool
	errMsg  string
}

// Option configures a Store.
type Option func(*options)

type options struct {
	notifier Notifier
	observer Observer
	log      *slog.Logger
}

// WithNotifier sets the notification sink. Defaults to a no-op sink.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithObserver sets the action observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger. Defaults to logging.Nop().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New creates a store named name backed by svc. The name is used in the
// fallback failure messages and in success notifications.
func New[TData, TCreate, TUpdate any](name string, svc Service[TData, TCreate, TUpdate], opts ...Option) *Store[TData, TCreate, TUpdate] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = NopNotifier{}
	}
	if o.log == nil {
		o.log = logging.Nop()
	}
	return &Store[TData, TCreate, TUpdate]{
		name:     name,
		service:  svc,
		notifier: o.notifier,
		observer: o.observer,
		log:      o.log.With("store", name),
	}
}

// Name returns the entity name the store was created with.
func (s *Store[TData, TCreate, TUpdate]) Name() string {
	return s.name
}

// Snapshot returns a copy of the current state.
func (s *Store[TData, TCreate, TUpdate]) Snapshot() State[TData] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State[TData]{
		IsLoading: s.loading,
		Error:     s.errMsg,
	}
	if s.list != nil {
		st.List = make([]TData, len(s.list))
		copy(st.List, s.list)
	}
	if s.detail != nil {
		d := *s.detail
		st.Detail = &d
	}
	return st
}

// List returns a copy of the last fetched list.
func (s *Store[TData, TCreate, TUpdate]) List() []TData {
	return s.Snapshot().List
}

// Detail returns the last fetched detail, or nil.
func (s *Store[TData, TCreate, TUpdate]) Detail() *TData {
	return s.Snapshot().Detail
}

// IsLoading reports whether an action is in flight.
func (s *Store[TData, TCreate, TUpdate]) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the last failure message, or "".
func (s *Store[TData, TCreate, TUpdate]) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// FetchAll replaces the list with the service's collection.
// On failure the list is left untouched.
func (s *Store[TData, TCreate, TUpdate]) FetchAll(ctx context.Context) Result {
	start := s.begin()

	data, err := s.service.FetchAll(ctx)
	if err != nil {
		msg := s.fail(err, fmt.Sprintf("Failed to fetch %s", s.name))
		s.end(ActionFetchAll, false, start)
		return Result{Success: false, Message: msg}
	}

	s.mu.Lock()
	s.list = data
	s.mu.Unlock()

	s.end(ActionFetchAll, true, start)
	return Result{Success: true}
}

// FetchByID replaces the detail with the entity identified by id.
func (s *Store[TData, TCreate, TUpdate]) FetchByID(ctx context.Context, id int64) {
	start := s.begin()

	detail, err := s.service.FetchByID(ctx, id)
	if err != nil {
		s.fail(err, fmt.Sprintf("Failed to fetch %s by id", s.name))
		s.end(ActionFetchByID, false, start)
		return
	}

	s.mu.Lock()
	s.detail = &detail
	s.mu.Unlock()

	s.end(ActionFetchByID, true, start)
}

// CreateData creates an entity and re-fetches the list on success.
func (s *Store[TData, TCreate, TUpdate]) CreateData(ctx context.Context, payload TCreate) Result {
	start := s.begin()

	if _, err := s.service.Create(ctx, payload); err != nil {
		msg := s.fail(err, fmt.Sprintf("Failed to create %s", s.name))
		s.end(ActionCreate, false, start)
		return Result{Success: false, Message: msg}
	}

	s.notifier.NotifySuccess(fmt.Sprintf("%s created successfully", s.name))
	s.FetchAll(ctx)

	s.end(ActionCreate, true, start)
	return Result{Success: true}
}

// UpdateData updates the entity identified by id and re-fetches the list on
// success.
func (s *Store[TData, TCreate, TUpdate]) UpdateData(ctx context.Context, id int64, payload TUpdate) Result {
	start := s.begin()

	if _, err := s.service.Update(ctx, id, payload); err != nil {
		msg := s.fail(err, fmt.Sprintf("Failed to update %s", s.name))
		s.end(ActionUpdate, false, start)
		return Result{Success: false, Message: msg}
	}

	s.notifier.NotifySuccess(fmt.Sprintf("%s updated successfully", s.name))
	s.FetchAll(ctx)

	s.end(ActionUpdate, true, start)
	return Result{Success: true}
}

// DeleteData deletes the entity identified by id and re-fetches the list on
// success.
func (s *Store[TData, TCreate, TUpdate]) DeleteData(ctx context.Context, id int64) {
	start := s.begin()

	if _, err := s.service.Delete(ctx, id); err != nil {
		s.fail(err, fmt.Sprintf("Failed to delete %s", s.name))
		s.end(ActionDelete, false, start)
		return
	}

	s.notifier.NotifySuccess(fmt.Sprintf("%s deleted successfully", s.name))
	s.FetchAll(ctx)

	s.end(ActionDelete, true, start)
}

// begin clears the error and raises the loading flag.
func (s *Store[TData, TCreate, TUpdate]) begin() time.Time {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	return time.Now()
}

// end lowers the loading flag and reports the action.
func (s *Store[TData, TCreate, TUpdate]) end(action string, success bool, start time.Time) {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.log.Debug("store action finished", "action", action, "success", success, "duration", elapsed)
	if s.observer != nil {
		s.observer.ObserveAction(s.name, action, success, elapsed)
	}
}

// fail records and reports a failure. It returns the user-facing message.
func (s *Store[TData, TCreate, TUpdate]) fail(err error, fallback string) string {
	msg := Message(err, fallback)
	s.notifier.NotifyError(msg)

	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()

	s.log.Warn("store action failed", "error", err, "message", msg)
	return msg
}

// Message returns err's text, or fallback when err is nil or has an empty
// message.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// NotifySuccess implements Notifier.
func (NopNotifier) NotifySuccess(string) {}

// NotifyError implements Notifier.
func (NopNotifier) NotifyError(string) {}

var _ Notifier = NopNotifier{}
