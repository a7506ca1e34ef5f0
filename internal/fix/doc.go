// Package fix implements the Xena FIX-over-JSON wire codec.
//
// Frames are JSON objects keyed by FIX tag numbers, e.g.
//
//	{"35":"A","553":"api-key","554":"...","96":"AUTH1700000000000000000"}
//
// Tag 35 (MsgType) selects the concrete message. Only the subset of the
// venue catalog used by the trading and market-data clients is modelled;
// unknown message types decode to ErrUnknownMsgType so callers can drop
// them without failing.
package fix
