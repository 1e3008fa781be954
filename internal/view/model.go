package view

import "github.com/abgdnv/checklist/internal/model"

// LoadStatus is the state of the initial (or manually repeated) fetch.
type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadFailed  LoadStatus = "failed"
)

// LoadState is shown instead of the list while loading or after a failed load.
type LoadState struct {
	Status LoadStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Form is the create/edit form. An empty TargetID means a new product is being created.
type Form struct {
	Open     bool   `json:"open"`
	TargetID string `json:"target_id,omitempty"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
}

// Editing reports whether the form edits an existing product.
func (f Form) Editing() bool {
	return f.TargetID != ""
}

// Model is everything the presentation layer needs to render the checklist.
type Model struct {
	Products      []model.Product `json:"products"`
	BrandOptions  []BrandOption   `json:"brand_options"`
	SelectedBrand string          `json:"selected_brand"`
	UntickedLines []string        `json:"unticked_lines"`
	UntickedText  string          `json:"unticked_text"`
	Form          Form            `json:"form"`
	Load          LoadState       `json:"load"`
}
