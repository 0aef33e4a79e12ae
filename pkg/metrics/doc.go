// Package metrics exposes console activity to Prometheus.
//
// Collectors live in a private registry built by New. Store actions are
// recorded through ObserveAction, which satisfies crud.Observer, and HTTP
// traffic through Middleware. Mount Handler on /metrics.
//
// # Metrics
//
//   - wms_console_store_actions_total: store actions (labels: store, action, result)
//   - wms_console_store_action_duration_seconds: store action latency (labels: store, action)
//   - wms_console_http_requests_total: HTTP requests (labels: method, route, status)
//   - wms_console_http_request_duration_seconds: HTTP latency (labels: method, route)
//   - wms_console_http_inflight_requests: requests being served
//   - wms_console_notifications_total: user notifications (labels: kind)
//   - wms_console_menu_routes: routes produced per menu build
//
// The route label is the chi route pattern, or "unmatched" when no route
// handled the request, so raw paths never become label values.
package metrics
