// Package server implements the task backend that the client streams from.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Routes
//
//	GET /stream?p=<partition>&u=<target>  → event stream of the task's stdout
//	GET /download/<path>                  → file below the output directory, as an attachment
//
// The stream handler requires u (400 "Missing parameters" otherwise) and runs the configured
// command with the partition and target appended as the last two arguments. Each stdout line
// becomes one "data:" event and "data: SCRIPT_FINISHED" follows when the process exits.
// Stderr is logged, never streamed. A client that disconnects cancels the process.
//
// # Middleware
//
//   - [Logging]: method, path, status and duration per request
//   - [RateLimit]: one token bucket shared by every client (429 when empty)
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
