package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type paramsKey struct{}

type Router struct {
	mux       *http.ServeMux
	routes    map[string]HandlerFunc // key = METHOD:PATH
	paths     map[string]bool        // track registered paths
	wildcards []string               // wildcard paths in registration order
	origins   []string
	logger    *zap.Logger
}

// Option configures a Router
type Option func(*Router)

// WithLogger logs one line per request to logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger.Named("http") }
}

// WithCORS allows cross-origin requests from origins; "*" allows any origin
func WithCORS(origins ...string) Option {
	return func(r *Router) { r.origins = origins }
}

func New(opts ...Option) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// Catch-all handler for unknown paths
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	key := req.Method + ":" + req.URL.Path
	if h, ok := r.routes[key]; ok {
		h(w, req)
		return
	}

	// Try to find a wildcard route
	methodMismatch := r.paths[req.URL.Path]
	for _, routePath := range r.wildcards {
		params, ok := matchWildcardRoute(req.URL.Path, routePath)
		if !ok {
			continue
		}
		h, ok := r.routes[req.Method+":"+routePath]
		if !ok {
			methodMismatch = true
			continue
		}
		h(w, req.WithContext(context.WithValue(req.Context(), paramsKey{}, params)))
		return
	}

	if methodMismatch {
		// Path exists but method not allowed
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// ServeHTTP applies CORS and request logging around the registered routes
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	if r.applyCORS(lrw, req) {
		r.mux.ServeHTTP(lrw, req)
	}

	r.logger.Info("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", lrw.statusCode),
		zap.Duration("duration", time.Since(start)),
	)
}

// applyCORS sets the CORS headers for an allowed origin and answers
// preflight requests. It reports whether the request should be routed.
func (r *Router) applyCORS(w http.ResponseWriter, req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" || len(r.origins) == 0 {
		return true
	}
	allowed := ""
	for _, o := range r.origins {
		if o == "*" || o == origin {
			allowed = origin
			break
		}
	}
	if allowed == "" {
		return true
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", allowed)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Add("Vary", "Origin")
	if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if reqHeaders := req.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		} else {
			h.Set("Access-Control-Allow-Headers", "*")
		}
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	return true
}

// Param returns the i-th wildcard segment matched for req, or "" if there is none
func Param(req *http.Request, i int) string {
	params, _ := req.Context().Value(paramsKey{}).([]string)
	if i < 0 || i >= len(params) {
		return ""
	}
	return params[i]
}

// matchWildcardRoute checks if a request path matches a wildcard route
// pattern and returns the segments matched by each wildcard. A wildcard
// matches exactly one segment.
func matchWildcardRoute(requestPath, routePattern string) ([]string, bool) {
	// Split both paths into segments
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	if len(requestSegments) != len(routeSegments) {
		return nil, false
	}
	return matchSegments(requestSegments, routeSegments)
}

func matchSegments(requestSegments, routeSegments []string) ([]string, bool) {
	var params []string
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			// Wildcard matches any non-empty segment
			if requestSegments[i] == "" {
				return nil, false
			}
			params = append(params, requestSegments[i])
			continue
		}
		if requestSegments[i] != routeSegment {
			// Exact match required for non-wildcard segments
			return nil, false
		}
	}
	return params, true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	if !r.paths[path] && strings.Contains(path, "*") {
		r.wildcards = append(r.wildcards, path)
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Handle mounts h on a ServeMux pattern, bypassing route matching
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// Getter methods for testing
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (r *Router) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}
