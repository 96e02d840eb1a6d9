package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one API operation exposed both as an HTTP route and as a
// CLI command that calls that route, so the two surfaces cannot drift.
type Endpoint interface {
	// Route returns the HTTP method, path, and handler. The path may use
	// mux patterns ({id}, {name...}); method and path are joined as
	// "METHOD /path" at registration.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the handler needs the initialized
	// service stack (store opened, provider built). Routes that answer
	// before init, like the health probe, return false.
	RequiresInit() bool

	// Command returns a cobra command that invokes the route over HTTP.
	// getServerURL is deferred so flag parsing can finish first.
	Command(getServerURL func() string) *cobra.Command
}
