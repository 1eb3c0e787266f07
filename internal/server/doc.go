// Package server provides HTTP routing, middleware, and the development content backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally.
//
// # Content Backend
//
// [ContentHandler] serves the two creator endpoints the client consumes from a [ContentStore]:
//
//	GET /creator/contents/{status}  -> {"data": [...tracks], "status": "success"}
//	GET /creator/content/{id}       -> {"data": {...detail}, "status": "success"}
//
// Unknown content yields 404 with a {"detail": "..."} body, matching the error shape the client parses.
//
// [Seed] fills the store from a JSON fixture so `soundscript serve --seed` can run without the real backend.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
