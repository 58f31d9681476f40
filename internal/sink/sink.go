// Package sink delivers extracted pick lines to their consumers.
package sink

import (
	"context"
	"errors"

	"github.com/Sammers21/owl-esports/pkg/types"
)

var (
	ErrRejected             = errors.New("delivery rejected")
	ErrClipboardUnsupported = errors.New("clipboard unsupported on this system")
)

// Sink performs one delivery. Implementations must honor ctx.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d types.Delivery) error
}

// Nop accepts every delivery and does nothing.
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Deliver(context.Context, types.Delivery) error { return nil }
