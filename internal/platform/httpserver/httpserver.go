package httpserver

import (
	"net/http"
	"time"
)

// uploadReadTimeout leaves room for a 10 MiB attachment on a slow link.
const uploadReadTimeout = 2 * time.Minute

// New builds the API server. Writes may run for the router's request
// timeout plus a margin for the error response.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       uploadReadTimeout,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       90 * time.Second,
	}
}
