package sink

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/Sammers21/owl-esports/pkg/types"
)

// Clipboard copies the pick line to the system clipboard.
type Clipboard struct {
	write       func(string) error
	unsupported bool
}

func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Deliver(ctx context.Context, d types.Delivery) error {
	if c.unsupported {
		return ErrClipboardUnsupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.write(d.PickLine)
}
