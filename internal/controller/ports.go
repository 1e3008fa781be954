package controller

import (
	"context"

	"github.com/abgdnv/checklist/internal/notice"
)

// Clipboard receives the copied unticked list.
type Clipboard interface {
	Write(ctx context.Context, text string) error
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n notice.Notice)
}

// Confirmer is the yes/no gate in front of destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Answer is a fixed reply, for callers that asked the user before invoking the controller.
type Answer bool

func (a Answer) Confirm(context.Context, string) bool {
	return bool(a)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, notice.Notice) {}
