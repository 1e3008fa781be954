// Package model holds the checklist's single domain entity and the request shapes sent to the remote store.
package model

// Product is a checklist entry. ID is assigned by the remote store and never changes afterwards.
type Product struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Checked bool   `json:"checked"`
}

// Draft is the body of a create request. Checked is omitted, the remote store defaults it to false.
type Draft struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// Patch is a partial update. Nil fields are left out of the request body.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Brand   *string `json:"brand,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// CheckedPatch builds a Patch that only sets the checked flag.
func CheckedPatch(checked bool) Patch {
	return Patch{Checked: &checked}
}

// DetailsPatch builds a Patch that replaces name and brand.
func DetailsPatch(name, brand string) Patch {
	return Patch{Name: &name, Brand: &brand}
}

// Apply returns a copy of p with the patch fields applied.
func (pt Patch) Apply(p Product) Product {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Brand != nil {
		p.Brand = *pt.Brand
	}
	if pt.Checked != nil {
		p.Checked = *pt.Checked
	}
	return p
}
