package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"hearsight/internal/contextutil"
)

func TestLoggerMiddleware(t *testing.T) {
	var capturedCtx context.Context
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
		w.WriteHeader(http.StatusOK)
	})

	chain := middleware.RequestID(LoggerMiddleware(handler))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	chain.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
	}

	// Check that logger was added to context
	if capturedCtx == nil {
		t.Fatal("LoggerMiddleware() should capture context")
	}
	if capturedCtx.Value(contextutil.LoggerKey()) == nil {
		t.Error("LoggerMiddleware() should add logger to context")
	}
	if middleware.GetReqID(capturedCtx) == "" {
		t.Error("request id should be set before the logger")
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "regular request",
			method:     http.MethodPost,
			path:       "/api/chat",
			statusCode: http.StatusOK,
		},
		{
			name:       "health check skipped",
			method:     http.MethodGet,
			path:       "/api/health",
			statusCode: http.StatusOK,
		},
		{
			name:       "failing health check logged",
			method:     http.MethodGet,
			path:       "/api/health",
			statusCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			RequestLogger(handler).ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.statusCode, http.StatusNotFound)
	}

	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "preflight OPTIONS",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
			wantOrigin: "http://localhost:3000",
		},
		{
			name:       "allowed origin",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodPost,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
			wantOrigin: "http://localhost:3000",
		},
		{
			name:       "disallowed origin gets no header",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodPost,
			origin:     "http://evil.example",
			wantStatus: http.StatusOK,
			wantOrigin: "",
		},
		{
			name:       "wildcard by default",
			origins:    nil,
			method:     http.MethodPost,
			origin:     "http://anywhere.example",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()

			CORS(tt.origins)(handler).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
