// Package marketdata implements the Xena market-data websocket client.
//
// Each subscription is identified by its stream key, name[:symbol][:postfix],
// which the venue echoes in MDStreamID on every refresh and reject. A reject
// ends the subscription and a disconnect ends all of them; callers
// resubscribe after reconnecting.
package marketdata
