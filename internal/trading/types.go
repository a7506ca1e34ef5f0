package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/xena-client/internal/auth"
	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/fix"
)

// Errors
var (
	ErrLogonRejected         = errors.New("logon rejected")
	ErrLogonResponseTimeout  = errors.New("logon response timed out")
	ErrLogonInProgress       = errors.New("logon already in progress")
	ErrDuplicateSubscription = connection.ErrDuplicateSubscription
	ErrNotConnected          = connection.ErrNotConnected
)

// LogonRejectedError carries the venue's reject text. It matches
// ErrLogonRejected.
type LogonRejectedError struct {
	Text string
}

func (e *LogonRejectedError) Error() string {
	return fmt.Sprintf("logon rejected: %s", e.Text)
}

func (e *LogonRejectedError) Is(target error) bool {
	return target == ErrLogonRejected
}

// Handler receives every routed message.
type Handler func(ctx context.Context, c *Client, msg fix.Message) error

// TypedHandler receives messages of one kind.
type TypedHandler[T fix.Message] func(ctx context.Context, c *Client, msg T) error

// DefaultURL is the production trading endpoint.
const DefaultURL = "wss://trading.xena.exchange/api/ws/trading"

// DefaultLogonTimeout bounds the wait for a Logon response.
const DefaultLogonTimeout = 5 * time.Second

// Config configures a Client.
type Config struct {
	Conn         connection.Config // URL, ping and queue settings; Handler is set by the client
	APIKey       string
	Signer       auth.Signer
	Accounts     []uint64      // Accounts to log on, empty for all
	LogonTimeout time.Duration // Defaults to DefaultLogonTimeout
}
