// Package connection implements the websocket lifecycle shared by the
// trading and market-data clients.
//
// A Conn:
//   - Owns one Transport at a time and replaces it after a disconnect
//   - Serialises outbound frames against its own heartbeat pings
//   - Pings the venue and disposes the transport when it falls silent
//   - Queues inbound text frames and dispatches them in order on one goroutine
//   - Publishes exactly one DisconnectInfo per disconnect
//
// Reconnection is left to the caller.
package connection
