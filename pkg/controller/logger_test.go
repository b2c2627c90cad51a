package controller_test

import (
	"context"
	"fraudwatch/pkg/controller"
	"fraudwatch/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		value      string
		remoteAddr string
		want       string
	}{
		{name: "x-forwarded-for", header: "X-Forwarded-For", value: "1.2.3.4, 5.6.7.8", want: "1.2.3.4"},
		{name: "x-real-ip", header: "X-Real-IP", value: "9.8.7.6", want: "9.8.7.6"},
		{name: "remote addr", remoteAddr: "10.0.0.1:12345", want: "10.0.0.1"},
		{name: "invalid remote addr", remoteAddr: "not-an-addr", want: "not-an-addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			if tc.remoteAddr != "" {
				req.RemoteAddr = tc.remoteAddr
			}
			require.Equal(t, tc.want, controller.GetClientIP(req))
		})
	}
}

func TestWithLogger_RequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Echo-Request-Id", controller.RequestID(r.Context()))
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	controller.WithLogger(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "abc-123", rec.Header().Get("X-Echo-Request-Id"))
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	controller.WithLogger(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get("X-Echo-Request-Id"), "a request id is generated")
}

func TestWithLogger_QuietPaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" && r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	handler := controller.WithLogger(next, "/healthz")

	serve := func(target string) {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(logger.WithLogger(context.Background(), zap.New(core)))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	serve("/healthz")
	serve("/healthz?fail=1")
	serve("/metrics")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, zapcore.InfoLevel, entries[1].Level, "failed probes are not quiet")
	require.Equal(t, zapcore.InfoLevel, entries[2].Level)
	require.Equal(t, int64(http.StatusServiceUnavailable), entries[1].ContextMap()["status_code"])
}
