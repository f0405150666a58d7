// Package httpserver constructs the API's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server bound to addr. ReadHeaderTimeout bounds clients that
// trickle headers; per-request deadlines come from the router's timeout
// middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
