package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"extractd/internal/extract"
	"extractd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Extract(ctx context.Context, text string) extract.Result
	Ready() bool
}

// NewMux builds the router. Every route goes through the metrics middleware;
// CORS is added only when enabled with SetCORSOptions.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(inflightMiddleware)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", modelsHandler(svc))
	r.Get("/status", statusHandler(svc))
	r.Post("/extract", extractHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("backend unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         300,
	}
}

// modelsHandler godoc
//
// @Summary  List discovered GGUF models
// @Produce  json
// @Success  200  {object}  types.ModelsResponse
// @Router   /models [get]
func modelsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.ListModels()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// statusHandler godoc
//
// @Summary  Backend and profile status
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// extractHandler godoc
//
// @Summary      Extract tax id and full name
// @Description  Always answers 200 with a result for well-formed JSON, empty text included; generation problems are reported in the error field.
// @Accept       json
// @Produce      json
// @Param        request  body      types.ExtractRequest  true  "text to analyze"
// @Success      200      {object}  extract.Result
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Router       /extract [post]
func extractHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies also land here; the message stays generic.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		rid := middleware.GetReqID(r.Context())
		start := time.Now()

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		if extractTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(extractTimeout)*time.Second)
			defer tcancel()
		}
		if zlog != nil && lvl >= LevelDebug {
			ctx = zlog.With().Str("request_id", rid).Logger().Level(zerolog.DebugLevel).WithContext(ctx)
		}

		res := svc.Extract(ctx, req.Text)
		RecordExtraction(res)

		if zlog != nil {
			switch {
			case lvl >= LevelDebug:
				zlog.Info().Str("request_id", rid).Str("method", string(res.Method)).
					Str("raw_model_output", res.RawModelOutputValue()).Str("error", res.ErrorValue()).
					Dur("dur", time.Since(start)).Msg("extract end")
			case lvl >= LevelInfo:
				zlog.Info().Str("request_id", rid).Str("method", string(res.Method)).
					Bool("tax_id", res.TaxID != nil).Bool("full_name", res.FullName != nil).
					Dur("dur", time.Since(start)).Msg("extract end")
			case lvl >= LevelError && res.Error != nil:
				zlog.Error().Str("request_id", rid).Str("error", res.ErrorValue()).Msg("extract degraded")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}
