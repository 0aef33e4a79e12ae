// Package crud provides the generic per-entity state container used by the
// console pages.
//
// A Store wraps a Service (the five REST verbs for one entity) and keeps the
// last fetched list, the last fetched detail, a loading flag and the last
// failure message. Actions never return Go errors: failures are stored in the
// Error field of the state and reported through the injected Notifier, and the
// three actions that return a Result report Success false with the message.
//
// # Usage
//
//	store := crud.New[wms.Uom, wms.CreateUom, wms.UpdateUom]("Uom", svc,
//	    crud.WithNotifier(hub),
//	    crud.WithLogger(logger),
//	)
//
//	if res := store.CreateData(ctx, payload); !res.Success {
//	    log.Warn("create failed", "message", res.Message)
//	}
//	snap := store.Snapshot()
//
// # Consistency
//
// Every successful mutation re-runs FetchAll so the list always mirrors the
// server, including server-side computed fields. The list is never patched
// locally.
//
// # Concurrency
//
// State reads and writes are mutex-guarded, but actions are not serialized.
// Two actions running at the same time on one store interleave their state
// writes and the later write wins, including the loading flag. Callers that
// need strict ordering must serialize calls themselves.
package crud
