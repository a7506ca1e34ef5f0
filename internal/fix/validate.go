package fix

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidArgument is returned when a command or subscription argument
// fails validation.
var ErrInvalidArgument = errors.New("invalid argument")

// Sides, TimeInForces and PositionEffects list the accepted enum values.
var (
	Sides           = []string{SideBuy, SideSell}
	TimeInForces    = []string{TimeInForceGoodTillCancel, TimeInForceImmediateOrCancel, TimeInForceFillOrKill}
	PositionEffects = []string{PositionEffectClose, PositionEffectDefault, PositionEffectOpen}
)

// NotEmpty fails if value is empty or whitespace.
func NotEmpty(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, name)
	}
	return nil
}

// OneOf fails if value is not in allowed.
func OneOf(name, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidArgument, name, allowed, value)
	}
	return nil
}

// NotNegative fails if value is below zero.
func NotNegative[T ~int | ~int64](name string, value T) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidArgument, name, value)
	}
	return nil
}
