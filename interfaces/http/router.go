// Package http wires the chi router: the DynamoDB JSON endpoint, the
// path-style S3 surface, health checks and the middleware stack.
package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	dynamohttp "localaws/interfaces/http/dynamo"
	"localaws/interfaces/http/middleware"
	s3http "localaws/interfaces/http/s3"
)

// Router creates and configures the HTTP router
type Router struct {
	dynamoHandler *dynamohttp.Handler
	s3Handler     *s3http.Handler
	logger        *zap.Logger
	enableCORS    bool
}

// NewRouter creates a new router instance
func NewRouter(dynamoHandler *dynamohttp.Handler, s3Handler *s3http.Handler, logger *zap.Logger, enableCORS bool) *Router {
	return &Router{
		dynamoHandler: dynamoHandler,
		s3Handler:     s3Handler,
		logger:        logger,
		enableCORS:    enableCORS,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// Browser-facing CORS for local development against the emulator.
	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"ETag", "x-amz-version-id", "x-amz-delete-marker", "x-amz-request-id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	// Everything else is resolved by protocol: DynamoDB requests arrive as
	// POST / with an X-Amz-Target header; all other traffic is path-style
	// S3.
	router.HandleFunc("/*", rt.dispatch)
	router.HandleFunc("/", rt.dispatch)

	return router
}

func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.Header.Get("X-Amz-Target") != "" {
		rt.dynamoHandler.ServeHTTP(w, r)
		return
	}
	rt.serveS3(w, r)
}

// serveS3 resolves the bucket, key and operation tag from the path-style
// request and hands it to the S3 handler.
func (rt *Router) serveS3(w http.ResponseWriter, r *http.Request) {
	bucket, key := splitBucketKey(r.URL.EscapedPath())

	query := map[string]bool{}
	for name, values := range r.URL.Query() {
		query[name] = true
		if name == "list-type" && len(values) > 0 && values[0] == "2" {
			query["list-type=2"] = true
		}
	}
	if r.Header.Get("x-amz-copy-source") != "" {
		query["x-amz-copy-source"] = true
	}

	op := s3http.Resolve(r.Method, key != "", query)
	if bucket == "" {
		if r.Method != http.MethodGet {
			rt.s3Handler.Serve(s3http.OpUnknown, "", "", w, r)
			return
		}
		op = s3http.OpListBuckets
	}
	rt.s3Handler.Serve(op, bucket, key, w, r)
}

// splitBucketKey splits "/bucket/key/with/slashes" into its components.
func splitBucketKey(path string) (string, string) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", ""
	}
	parts := strings.SplitN(path, "/", 2)
	bucket := unescape(parts[0])
	if len(parts) == 1 {
		return bucket, ""
	}
	return bucket, unescape(parts[1])
}

func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
