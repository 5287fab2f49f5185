/*
Package httpserver hosts the RSA key provider API over HTTP.

The server mounts the routes of a RouteRegistrar (see api/resourcehandler)
and adds health endpoints used by load balancers:

  - GET /livez - Liveness check
  - GET /readyz - Readiness check, also fails while the secret store is unreachable
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

Requests are logged with the flashbots go-utils slog middleware. When
EnablePprof is set the pprof handlers are served under /debug.
*/
package httpserver
