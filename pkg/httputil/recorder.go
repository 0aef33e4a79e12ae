package httputil

import (
	"bufio"
	"net"
	"net/http"
)

// StatusRecorder wraps a ResponseWriter and remembers the status code.
// It passes Hijack and Flush through, so websocket upgrades still work
// behind it.
type StatusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

// NewStatusRecorder wraps w. The status defaults to 200.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// Status returns the status code written so far.
func (w *StatusRecorder) Status() int {
	return w.status
}

// WriteHeader records code and forwards the first call only.
func (w *StatusRecorder) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack hands the connection over, recording 101.
func (w *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.written = true
	w.status = http.StatusSwitchingProtocols
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *StatusRecorder) Flush() {
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}
