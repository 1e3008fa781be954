// Package controller turns user actions into remote store calls and cache updates.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/abgdnv/checklist/internal/cache"
	checklisterrors "github.com/abgdnv/checklist/internal/errors"
	"github.com/abgdnv/checklist/internal/model"
	"github.com/abgdnv/checklist/internal/notice"
	"github.com/abgdnv/checklist/internal/store"
	"github.com/abgdnv/checklist/internal/view"
	"github.com/abgdnv/checklist/pkg/config"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Prompts passed to the Confirmer.
const (
	DeletePrompt = "Are you sure you want to delete this product?"
	ClearPrompt  = "Are you sure you want to reset all checkboxes?"
)

// Notice texts.
const (
	msgLoadFailed       = "Error loading products. Please try again."
	msgValidationFailed = "Please fill in all fields!"
	msgSaved            = "Product saved"
	msgSaveFailed       = "Failed to save product"
	msgToggleFailed     = "Failed to update product status"
	msgTogglePending    = "Please wait, the previous change to this product is still being saved"
	msgDeleteFailed     = "Failed to delete product"
	msgClearFailed      = "Failed to clear all checkboxes"
	msgCopied           = "List copied to clipboard!"
	msgCopyFailed       = "Failed to copy list"
)

// Controller owns the application state: the product cache, the brand filter, the edit form,
// the load state and the set of products with a status update in flight.
// The cache is only mutated after the remote store confirmed a change.
type Controller struct {
	store      store.ProductStore
	cache      *cache.ProductCache
	clipboard  Clipboard
	notifier   Notifier
	validate   *validator.Validate
	logger     *slog.Logger
	clearLimit int

	mu             sync.Mutex
	selectedBrand  string
	form           view.Form
	load           view.LoadState
	pendingToggles map[string]struct{}
}

// New creates a Controller. A nil notifier discards notices.
func New(
	productStore store.ProductStore,
	productCache *cache.ProductCache,
	clipboard Clipboard,
	notifier Notifier,
	logger *slog.Logger,
	cfg config.ControllerConfig,
) *Controller {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Controller{
		store:          productStore,
		cache:          productCache,
		clipboard:      clipboard,
		notifier:       notifier,
		validate:       validate,
		logger:         logger.With("component", "controller"),
		clearLimit:     cfg.ClearConcurrency,
		load:           view.LoadState{Status: view.LoadIdle},
		pendingToggles: make(map[string]struct{}),
	}
}

// Load fetches the whole collection and replaces the cache. A failure leaves the previous
// contents in place and switches to the failed state; calling Load again is the reload.
func (c *Controller) Load(ctx context.Context) error {
	c.setLoad(view.LoadState{Status: view.LoadLoading})

	products, err := c.store.ListAll(ctx)
	if err != nil {
		c.setLoad(view.LoadState{Status: view.LoadFailed, Error: msgLoadFailed})
		c.fail(ctx, msgLoadFailed, "Error fetching products", err)
		return fmt.Errorf("load products: %w", err)
	}

	c.cache.ReplaceAll(products)
	c.setLoad(view.LoadState{Status: view.LoadReady})
	c.logger.InfoContext(ctx, "Products loaded", "count", len(products))
	return nil
}

// SetBrand changes the brand filter. An empty brand shows all products.
func (c *Controller) SetBrand(brand string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedBrand = brand
}

// SelectedBrand returns the current brand filter.
func (c *Controller) SelectedBrand() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedBrand
}

// Products returns the products passing the current filter, in cache order.
func (c *Controller) Products() []model.Product {
	return c.cache.FilterByBrand(c.SelectedBrand()).Collect()
}

// BrandOptions returns the brand filter options.
func (c *Controller) BrandOptions() []view.BrandOption {
	return view.BrandOptions(c.cache.DistinctBrands())
}

// Unticked returns the unchecked products passing the current filter.
func (c *Controller) Unticked() []model.Product {
	return cache.UncheckedOf(c.cache.FilterByBrand(c.SelectedBrand())).Collect()
}

// UntickedText renders Unticked as copyable text.
func (c *Controller) UntickedText() string {
	return view.UntickedText(c.Unticked())
}

// Model assembles everything the presentation layer renders.
func (c *Controller) Model() view.Model {
	c.mu.Lock()
	brand, form, load := c.selectedBrand, c.form, c.load
	c.mu.Unlock()

	filtered := c.cache.FilterByBrand(brand)
	unticked := cache.UncheckedOf(filtered).Collect()
	return view.Model{
		Products:      filtered.Collect(),
		BrandOptions:  view.BrandOptions(c.cache.DistinctBrands()),
		SelectedBrand: brand,
		UntickedLines: view.UntickedLines(unticked),
		UntickedText:  view.UntickedText(unticked),
		Form:          form,
		Load:          load,
	}
}

// LoadState returns the state of the last fetch.
func (c *Controller) LoadState() view.LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load
}

// BeginCreate opens an empty form for a new product.
func (c *Controller) BeginCreate() view.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = view.Form{Open: true}
	return c.form
}

// BeginEdit opens the form prefilled with the cached product.
func (c *Controller) BeginEdit(id string) (view.Form, error) {
	p, ok := c.cache.Get(id)
	if !ok {
		return view.Form{}, fmt.Errorf("edit product %s: %w", id, checklisterrors.ErrUnknownProduct)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = view.Form{Open: true, TargetID: p.ID, Name: p.Name, Brand: p.Brand}
	return c.form, nil
}

// CancelEdit closes and resets the form. An in-flight submit is not cancelled.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = view.Form{}
}

// Form returns the current form state.
func (c *Controller) Form() view.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Submit validates the input and creates a product, or updates the one being edited.
// Invalid input is rejected without any network call. On failure the form stays open with
// the entered values.
func (c *Controller) Submit(ctx context.Context, in FormInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)

	c.mu.Lock()
	target := c.form.TargetID
	c.form.Open = true
	c.form.Name, c.form.Brand = in.Name, in.Brand
	c.mu.Unlock()

	if err := c.validateInput(in); err != nil {
		c.notify(ctx, notice.Error, msgValidationFailed)
		return nil, err
	}

	var (
		saved *model.Product
		err   error
	)
	if target == "" {
		saved, err = c.store.Create(ctx, model.Draft{Name: in.Name, Brand: in.Brand})
	} else {
		saved, err = c.store.Update(ctx, target, model.DetailsPatch(in.Name, in.Brand))
	}
	if err != nil {
		c.fail(ctx, msgSaveFailed, "Error saving product", err, "target_id", target)
		if target == "" {
			return nil, fmt.Errorf("create product: %w", err)
		}
		return nil, fmt.Errorf("update product %s: %w", target, err)
	}

	if target == "" {
		c.cache.Upsert(*saved)
	} else if !c.cache.Replace(*saved) {
		c.logger.WarnContext(ctx, "Saved product is no longer listed", "ID", saved.ID)
	}

	c.mu.Lock()
	if c.form.TargetID == target {
		c.form = view.Form{}
	}
	c.mu.Unlock()

	c.notify(ctx, notice.Info, msgSaved)
	c.logger.InfoContext(ctx, "Product saved", "ID", saved.ID, "created", target == "")
	return saved, nil
}

// Toggle sets the checked flag of one product. The cache changes only after the remote store
// confirmed the update; on failure the result carries the checkbox state from before the click.
// A second toggle for a product whose previous toggle is still pending is rejected.
func (c *Controller) Toggle(ctx context.Context, id string, checked bool) (ToggleResult, error) {
	current, ok := c.cache.Get(id)
	if !ok {
		return ToggleResult{}, fmt.Errorf("toggle product %s: %w", id, checklisterrors.ErrUnknownProduct)
	}
	cmd := ToggleCommand{ProductID: id, Previous: current.Checked, Next: checked}

	if !c.acquire(id) {
		c.notify(ctx, notice.Error, msgTogglePending)
		return ToggleResult{Command: cmd, Checked: cmd.Rollback()},
			fmt.Errorf("toggle product %s: %w", id, checklisterrors.ErrToggleInFlight)
	}
	defer c.release(id)

	updated, err := c.store.Update(ctx, id, model.CheckedPatch(checked))
	if err != nil {
		c.fail(ctx, msgToggleFailed, "Error updating product status", err, "ID", id)
		return ToggleResult{Command: cmd, Checked: cmd.Rollback()}, fmt.Errorf("toggle product %s: %w", id, err)
	}

	c.cache.Replace(*updated)
	return ToggleResult{Command: cmd, Checked: updated.Checked, Product: updated}, nil
}

// Delete removes a product after the user confirmed it. It reports whether the product was deleted.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if _, ok := c.cache.Get(id); !ok {
		return false, fmt.Errorf("delete product %s: %w", id, checklisterrors.ErrUnknownProduct)
	}
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		c.logger.DebugContext(ctx, "Delete not confirmed", "ID", id)
		return false, nil
	}

	if err := c.store.Remove(ctx, id); err != nil {
		c.fail(ctx, msgDeleteFailed, "Error deleting product", err, "ID", id)
		return false, fmt.Errorf("delete product %s: %w", id, err)
	}

	c.cache.Remove(id)
	c.mu.Lock()
	if c.form.TargetID == id {
		c.form = view.Form{}
	}
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "Product deleted", "ID", id)
	return true, nil
}

type clearOutcome struct {
	updated *model.Product
	err     error
}

// ClearAll unchecks every product of the current filtered view with one concurrent update per
// product. All updates settle before the cache is touched; only confirmed updates are applied.
// Partial failure returns the report together with an aggregate error wrapping ErrBulkClear.
func (c *Controller) ClearAll(ctx context.Context, confirm Confirmer) (ClearReport, error) {
	report := ClearReport{Cleared: []string{}, Failed: []string{}, Skipped: []string{}}
	if confirm == nil || !confirm.Confirm(ctx, ClearPrompt) {
		return report, nil
	}
	report.Confirmed = true

	var targets []model.Product
	for _, p := range c.Products() {
		if !c.acquire(p.ID) {
			report.Skipped = append(report.Skipped, p.ID)
			continue
		}
		targets = append(targets, p)
	}

	outcomes := make([]clearOutcome, len(targets))
	var g errgroup.Group
	if c.clearLimit > 0 {
		g.SetLimit(c.clearLimit)
	}
	for i, p := range targets {
		g.Go(func() error {
			defer c.release(p.ID)
			updated, err := c.store.Update(ctx, p.ID, model.CheckedPatch(false))
			outcomes[i] = clearOutcome{updated: updated, err: err}
			// never short-circuit: every outcome is collected
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for i, out := range outcomes {
		id := targets[i].ID
		if out.err != nil {
			merr = multierror.Append(merr, fmt.Errorf("product %s: %w", id, out.err))
			report.Failed = append(report.Failed, id)
			continue
		}
		c.cache.Replace(*out.updated)
		report.Cleared = append(report.Cleared, id)
	}

	if err := merr.ErrorOrNil(); err != nil {
		c.fail(ctx, msgClearFailed, "Error clearing checkboxes", err, "failed", len(report.Failed), "cleared", len(report.Cleared))
		return report, fmt.Errorf("%w: %w", checklisterrors.ErrBulkClear, err)
	}
	c.logger.InfoContext(ctx, "Checkboxes cleared", "count", len(report.Cleared), "skipped", len(report.Skipped))
	return report, nil
}

// Copy puts the unticked text of the current filter on the clipboard and returns it.
// Clipboard failures are ClipboardError and never touch product state.
func (c *Controller) Copy(ctx context.Context) (string, error) {
	text := c.UntickedText()

	var err error
	if c.clipboard == nil {
		err = &checklisterrors.ClipboardError{Err: errors.New("no clipboard available")}
	} else if err = c.clipboard.Write(ctx, text); err != nil && !errors.Is(err, checklisterrors.ErrClipboard) {
		err = &checklisterrors.ClipboardError{Err: err}
	}
	if err != nil {
		c.fail(ctx, msgCopyFailed, "Error copying list", err)
		return "", fmt.Errorf("copy unticked list: %w", err)
	}

	c.notify(ctx, notice.Info, msgCopied)
	return text, nil
}

func (c *Controller) validateInput(in FormInput) error {
	err := c.validate.Struct(in)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate product form: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return &checklisterrors.ValidationError{Fields: fields}
}

// acquire marks id as having a status update in flight. It returns false if one already is.
func (c *Controller) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, pending := c.pendingToggles[id]; pending {
		return false
	}
	c.pendingToggles[id] = struct{}{}
	return true
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pendingToggles, id)
}

func (c *Controller) setLoad(state view.LoadState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load = state
}

func (c *Controller) notify(ctx context.Context, level notice.Level, message string) {
	c.notifier.Notify(ctx, notice.Notice{Level: level, Message: message})
}

// fail logs err and shows message to the user.
func (c *Controller) fail(ctx context.Context, message, logMsg string, err error, args ...any) {
	c.logger.ErrorContext(ctx, logMsg, append(args, "error", err)...)
	c.notify(ctx, notice.Error, message)
}
