// Package trading implements the Xena trading websocket client.
//
// The client authenticates with a signed Logon, then routes execution
// reports, cancel rejects, margin and position reports to handlers
// registered per message kind or for all messages.
package trading
