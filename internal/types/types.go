package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sammers21/owl-esports/internal/engine"
)

type ClientMessage struct {
	Type  string `json:"type"` // "SubmitPickLine" | "ClearDraft"
	Line  string `json:"line,omitempty"`
	Match string `json:"match,omitempty"`
}

type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Error"
	Tracker string        `json:"tracker,omitempty"`
	Version int           `json:"version,omitempty"`
	State   *engine.State `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var ErrBadTrackerID = errors.New("tracker id must be an integer")

// ParseTrackerID checks that tg is a decimal int64 and returns its canonical
// form, so "007" and "7" address the same room.
func ParseTrackerID(tg string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(tg), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadTrackerID, tg)
	}
	return strconv.FormatInt(id, 10), nil
}
