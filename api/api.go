// Package api configures an http server for administration and application resources.
package api

import (
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/rollcall/server/api/attendance"
	"github.com/rollcall/server/api/code"
	"github.com/rollcall/server/api/courses"
	"github.com/rollcall/server/api/export"
	"github.com/rollcall/server/api/preferences"
	"github.com/rollcall/server/api/ws"
	"github.com/rollcall/server/clock"
	"github.com/rollcall/server/config"
	"github.com/rollcall/server/database"
	"github.com/rollcall/server/logging"
	appmiddleware "github.com/rollcall/server/middleware"
	"github.com/rollcall/server/realtime"
	"github.com/rollcall/server/services/codeengine"
	"github.com/rollcall/server/services/submission"
)

// NewRouter wires the store, code engine, submission pipeline and presence
// bus together and mounts every HTTP resource on a chi router.
func NewRouter(cfg *config.Config) (chi.Router, error) {
	r, _, err := build(cfg)
	return r, err
}

// build is the shared construction path for NewRouter and NewServer; the
// latter also needs the code engine handle to stop its sweep loop on
// shutdown.
func build(cfg *config.Config) (chi.Router, *codeengine.Engine, error) {
	db, err := database.DBConn(cfg)
	if err != nil {
		logging.Logger.WithField("module", "database").Error(err)
		return nil, nil, err
	}

	store := database.NewStore(db)
	clk := clock.Real{}

	engine := codeengine.New(store, clk, cfg.CodeLength, cfg.CodeLifetime)
	engine.StartSweep(cfg.CodeSweepInterval)

	hub := realtime.NewHub(logging.Logger)
	pipeline := submission.New(store, engine, hub, cfg.AttendanceTimezone)

	coursesAPI := courses.NewResource(store)
	codeAPI := code.NewResource(engine)
	attendanceAPI := attendance.NewResource(pipeline, clk, cfg.TrustProxy)
	preferencesAPI := preferences.NewResource(store)
	exportAPI := export.NewResource(store)
	wsAPI := ws.NewResource(hub, courseChecker{store: store})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Use(logging.NewStructuredLogger(logging.Logger))
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(corsConfig().Handler)
	r.Use(appmiddleware.SecurityHeaders)

	securityLogger := appmiddleware.NewSecurityLogger()
	securityLogger.SetTrustProxy(cfg.TrustProxy)

	// A classroom's projector and every student's phone hammer
	// /attendance over the course of a session, so it is the one route
	// that gets its own per-peer limiter rather than the default chi
	// throughput.
	submissionLimiter := appmiddleware.NewRateLimiter(120, 20)
	submissionLimiter.SetTrustProxy(cfg.TrustProxy)
	submissionLimiter.SetLogger(securityLogger)

	coursesRouter := coursesAPI.Router()
	coursesRouter.Mount("/", exportAPI.Router())
	r.Mount("/courses", coursesRouter)
	r.Mount("/confirmation-code", codeAPI.Router())
	r.Group(func(r chi.Router) {
		r.Use(submissionLimiter.Middleware())
		r.Mount("/attendance", attendanceAPI.Router())
	})
	r.Mount("/preferences", preferencesAPI.Router())
	r.Mount("/ws", wsAPI.Router())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/*", SPAHandler(cfg.FrontendBuildPath))

	return r, engine, nil
}

// courseChecker adapts database.Store to ws.CourseChecker.
type courseChecker struct {
	store *database.Store
}

func (c courseChecker) CourseExists(r *http.Request, courseID string) bool {
	_, err := c.store.GetCourse(r.Context(), courseID)
	return err == nil
}

func corsConfig() *cors.Cors {
	// Basic CORS
	// for more ideas, see: https://developer.github.com/v3/#cross-origin-resource-sharing
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400, // Maximum value not ignored by any of major browsers
	})
}

// SPAHandler serves the single-page dashboard frontend.
func SPAHandler(publicDir string) http.HandlerFunc {
	handler := http.FileServer(http.Dir(publicDir))
	return func(w http.ResponseWriter, r *http.Request) {
		indexPage := path.Join(publicDir, "index.html")
		serviceWorker := path.Join(publicDir, "service-worker.js")

		requestedAsset := path.Join(publicDir, r.URL.Path)
		if strings.Contains(requestedAsset, "service-worker.js") {
			requestedAsset = serviceWorker
		}
		if _, err := os.Stat(requestedAsset); err != nil {
			http.ServeFile(w, r, indexPage)
			return
		}
		handler.ServeHTTP(w, r)
	}
}
