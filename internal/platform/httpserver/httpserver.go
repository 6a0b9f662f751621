// Package httpserver builds the HTTP server wrapping the application router.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with timeouts sized for this workload: most endpoints
// are small JSON exchanges, but photo uploads and downloads need room on
// slow links.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
