package handler

import (
	"log"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Logger is a structured access log middleware: method, path, status,
// duration, and the chi request id.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Printf("%s %s %d %s reqid=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start),
			chimiddleware.GetReqID(r.Context()),
		)
	})
}

// CORS allows cross-origin requests from any origin. The registration link
// is public and the dashboard may be served from a different origin.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
	AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	MaxAge:         300,
})
