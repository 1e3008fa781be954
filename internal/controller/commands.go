package controller

import "github.com/abgdnv/checklist/internal/model"

// ToggleCommand is one click on a product checkbox.
type ToggleCommand struct {
	ProductID string `json:"product_id"`
	Previous  bool   `json:"previous"`
	Next      bool   `json:"next"`
}

// Rollback is the checkbox state to restore when the command fails.
func (c ToggleCommand) Rollback() bool {
	return c.Previous
}

// ToggleResult tells the presentation layer which state the checkbox must show after the command.
type ToggleResult struct {
	Command ToggleCommand  `json:"command"`
	Checked bool           `json:"checked"`
	Product *model.Product `json:"product,omitempty"`
}

// FormInput is what the user typed into the create/edit form.
type FormInput struct {
	Name  string `json:"name"  validate:"required"`
	Brand string `json:"brand" validate:"required"`
}

// ClearReport lists the outcome of a bulk clear per product id.
type ClearReport struct {
	Confirmed bool     `json:"confirmed"`
	Cleared   []string `json:"cleared"`
	Failed    []string `json:"failed"`
	// Skipped products had a status update in flight when the clear started.
	Skipped []string `json:"skipped"`
}
