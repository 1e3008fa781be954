// Package clipboard writes the copied unticked list to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/atotto/clipboard"

	checklisterrors "github.com/abgdnv/checklist/internal/errors"
)

var errUnsupported = errors.New("system clipboard is not available")

// System is the desktop clipboard (xclip/xsel/wl-copy, pbcopy or the Windows API).
type System struct {
	write       func(string) error
	unsupported bool
	logger      *slog.Logger
}

// NewSystem creates a System clipboard. On hosts without a clipboard utility every Write fails
// with a ClipboardError.
func NewSystem(logger *slog.Logger) *System {
	s := &System{
		write:       clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
		logger:      logger.With("component", "clipboard"),
	}
	if s.unsupported {
		s.logger.Warn("System clipboard is not available, copy requests will fail")
	}
	return s
}

// Write replaces the clipboard contents with text.
func (s *System) Write(ctx context.Context, text string) error {
	if s.unsupported {
		return &checklisterrors.ClipboardError{Err: errUnsupported}
	}
	if err := ctx.Err(); err != nil {
		return &checklisterrors.ClipboardError{Err: err}
	}
	if err := s.write(text); err != nil {
		return &checklisterrors.ClipboardError{Err: err}
	}
	s.logger.DebugContext(ctx, "Clipboard written", "bytes", len(text))
	return nil
}
