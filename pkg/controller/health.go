package controller

import "net/http"

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Connected() bool
}

// Health serves 200 when checker is connected and 503 otherwise.
func Health(checker HealthChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !checker.Connected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("disconnected\n"))

			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
}
