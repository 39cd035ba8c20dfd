// Package server hosts map engines for browser sessions over HTTP and
// WebSocket.
//
// # Sessions
//
// POST /api/sessions creates a [Session]: one engine owned by one goroutine.
// Inbound events, animation ticks, snapshot queries and teardown all run on
// that goroutine, so the engine is never touched concurrently. Sessions are
// closed when deleted, when the server shuts down, or after the configured
// idle timeout with no requests and no connected subscribers.
//
// # Live protocol
//
// GET /ws/{sid} upgrades to a WebSocket. Clients send [engine.Event] JSON,
// validated against the embedded event schema before dispatch. The server
// sends [Message] values:
//
//	{"type":"snapshot","snapshot":{...}}     after every accepted event
//	{"type":"status","status":{...}}         per-parcel diff of an animation step
//	{"type":"error","error":{"code":..}}     rejected event
//	{"type":"closed","reason":"idle"}        session teardown
//
// # REST
//
//	GET    /healthz
//	GET    /api/parcels[?status=available|sold|builder]
//	GET    /api/parcels/{id}
//	GET    /api/layout[?format=json|yaml|dot|svg&detailed=true]
//	GET    /api/site
//	POST   /api/sessions
//	GET    /api/sessions/{sid}
//	GET    /api/sessions/{sid}/plan.svg[?projection=true&legend=false]
//	POST   /api/sessions/{sid}/events
//	DELETE /api/sessions/{sid}
//
// Errors are JSON objects {"code": ..., "message": ...} with the status code
// chosen by [errors.HTTPStatus].
package server
