package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	checklisterrors "github.com/abgdnv/checklist/internal/errors"
	"github.com/abgdnv/checklist/internal/model"
	"github.com/abgdnv/checklist/pkg/config"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// RemoteStore talks to a REST collection: GET/POST on the collection URL, PUT/DELETE on {url}/{id}.
type RemoteStore struct {
	url     string
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	logger  *slog.Logger
}

var _ ProductStore = (*RemoteStore)(nil)

// NewRemoteStore creates a client for the collection at cfg.URL.
// Every request is bounded by cfg.Timeout; retries stay disabled.
func NewRemoteStore(cfg config.RemoteStoreConfig, logger *slog.Logger) *RemoteStore {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	s := &RemoteStore{
		url:    strings.TrimRight(cfg.URL, "/"),
		http:   httpClient,
		logger: logger.With("component", "remote_store"),
	}
	if cfg.CircuitBreaker.Enabled {
		s.breaker = newCircuitBreaker(cfg.CircuitBreaker, s.logger)
	}
	return s
}

// ListAll fetches the whole collection.
func (s *RemoteStore) ListAll(ctx context.Context) ([]model.Product, error) {
	const op = "list products"
	resp, err := s.do(ctx, op, false, func() (*resty.Response, error) {
		return s.http.R().SetContext(ctx).Get(s.url)
	})
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := decode(op, resp, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	s.logger.DebugContext(ctx, "Fetched products", "count", len(products))
	return products, nil
}

// Create posts a draft to the collection.
func (s *RemoteStore) Create(ctx context.Context, draft model.Draft) (*model.Product, error) {
	const op = "create product"
	resp, err := s.do(ctx, op, false, func() (*resty.Response, error) {
		return s.http.R().SetContext(ctx).SetBody(draft).Post(s.url)
	})
	if err != nil {
		return nil, err
	}
	var created model.Product
	if err := decode(op, resp, &created); err != nil {
		return nil, err
	}
	if err := incomplete(op, resp, created); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Created product", "ID", created.ID)
	return &created, nil
}

// Update sends a partial update for one product.
func (s *RemoteStore) Update(ctx context.Context, id string, patch model.Patch) (*model.Product, error) {
	op := fmt.Sprintf("update product %s", id)
	resp, err := s.do(ctx, op, true, func() (*resty.Response, error) {
		return s.http.R().SetContext(ctx).SetBody(patch).Put(s.itemURL(id))
	})
	if err != nil {
		return nil, err
	}
	var updated model.Product
	if err := decode(op, resp, &updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	if err := incomplete(op, resp, updated); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Updated product", "ID", id)
	return &updated, nil
}

// Remove deletes one product. The response body is ignored.
func (s *RemoteStore) Remove(ctx context.Context, id string) error {
	op := fmt.Sprintf("delete product %s", id)
	_, err := s.do(ctx, op, true, func() (*resty.Response, error) {
		return s.http.R().SetContext(ctx).Delete(s.itemURL(id))
	})
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Deleted product", "ID", id)
	return nil
}

func (s *RemoteStore) itemURL(id string) string {
	return s.url + "/" + url.PathEscape(id)
}

// do runs call (through the breaker when enabled) and maps transport failures and status codes to error kinds.
// A 404 is ErrNotFound only for item operations; for the collection itself it is a failed request.
func (s *RemoteStore) do(ctx context.Context, op string, item bool, call func() (*resty.Response, error)) (*resty.Response, error) {
	checked := func() (*resty.Response, error) {
		resp, err := call()
		if err != nil {
			return nil, &checklisterrors.TransportError{Op: op, Kind: checklisterrors.RequestFailed, Err: err}
		}
		return resp, statusError(op, item, resp)
	}

	var (
		resp *resty.Response
		err  error
	)
	if s.breaker == nil {
		resp, err = checked()
	} else {
		resp, err = s.breaker.Execute(checked)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &checklisterrors.TransportError{Op: op, Kind: checklisterrors.RequestFailed,
				Err: fmt.Errorf("%w: %w", checklisterrors.ErrCircuitOpen, err)}
		}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Remote store call failed", "op", op, "error", err)
		return nil, err
	}
	return resp, nil
}

func statusError(op string, item bool, resp *resty.Response) error {
	switch {
	case item && resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, checklisterrors.ErrNotFound)
	case resp.StatusCode() < 200 || resp.StatusCode() > 299:
		return &checklisterrors.TransportError{Op: op, Kind: checklisterrors.RequestFailed, Status: resp.StatusCode(),
			Err: fmt.Errorf("unexpected status %s", resp.Status())}
	default:
		return nil
	}
}

func decode(op string, resp *resty.Response, target any) error {
	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return &checklisterrors.TransportError{Op: op, Kind: checklisterrors.Unparsable, Status: resp.StatusCode(), Err: err}
	}
	return nil
}

// incomplete rejects a product record lacking its id, name or brand, e.g. a PUT answered with only the changed fields.
func incomplete(op string, resp *resty.Response, p model.Product) error {
	var missing []string
	if p.ID == "" {
		missing = append(missing, "id")
	}
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Brand == "" {
		missing = append(missing, "brand")
	}
	if len(missing) == 0 {
		return nil
	}
	return &checklisterrors.TransportError{Op: op, Kind: checklisterrors.Unparsable, Status: resp.StatusCode(),
		Err: fmt.Errorf("response has no %s", strings.Join(missing, ", "))}
}

// newCircuitBreaker opens after more than cfg.ConsecutiveFailures failed calls in a row.
// Not-found answers are regular outcomes and do not count as failures.
func newCircuitBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*resty.Response] {
	st := gobreaker.Settings{
		Name:        "remote-store-cb",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, checklisterrors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[*resty.Response](st)
}
