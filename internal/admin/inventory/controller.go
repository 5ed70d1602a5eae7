package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

const (
	// DefaultConfirmationLiteral must be typed to confirm a delete.
	DefaultConfirmationLiteral = "ELIMINAR"
	// DefaultRecordLimit caps how many rows the sheet may hold before creates are refused.
	DefaultRecordLimit = 999
	// DefaultDeleteTicketTTL is how long an unanswered delete dialog stays valid.
	DefaultDeleteTicketTTL = 10 * time.Minute
)

var (
	// ErrProductNotFound indicates the business key is not present in the catalog.
	ErrProductNotFound = errors.New("inventory: product not found")
	// ErrTicketNotFound indicates the delete ticket expired or never existed.
	ErrTicketNotFound = errors.New("inventory: delete ticket not found")
	// ErrTicketPhase indicates a delete step was attempted out of order.
	ErrTicketPhase = errors.New("inventory: delete ticket is not awaiting this step")
)

// Direction selects whether AdjustStock adds or removes units.
type Direction int

const (
	DirectionAdd Direction = iota
	DirectionSubtract
)

// ParseDirection maps form values ("add", "subtract", "+", "-") to a Direction.
func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "add", "+", "in", "increase":
		return DirectionAdd, true
	case "subtract", "-", "out", "decrease":
		return DirectionSubtract, true
	}
	return DirectionAdd, false
}

// Options configures a Controller.
type Options struct {
	Service             catalog.Service
	Logger              *zap.Logger
	ConfirmationLiteral string
	RecordLimit         int
	Locale              language.Tag
	Clock               func() time.Time
	IDGenerator         func() string
	// DeleteTicketTTL bounds how long a pending delete stays confirmable.
	DeleteTicketTTL time.Duration
}

// Controller sequences catalog mutations and keeps the local store in sync
// with the remote endpoint. Mutations are not serialized: two stock
// adjustments issued at once may both read the same value and the later
// write wins.
type Controller struct {
	service catalog.Service
	store   *Store
	logger  *zap.Logger
	bus     EventBus.Bus

	literal string
	limit   int
	locale  language.Tag
	clock   func() time.Time
	newID   func() string

	ticketTTL time.Duration
	ticketMu  sync.Mutex
	pending   *DeleteTicket
}

// NewController constructs a Controller around svc.
func NewController(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, catalog.ErrNotConfigured
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	literal := strings.TrimSpace(opts.ConfirmationLiteral)
	if literal == "" {
		literal = DefaultConfirmationLiteral
	}
	limit := opts.RecordLimit
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	locale := opts.Locale
	if locale == language.Und {
		locale = language.Spanish
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := opts.DeleteTicketTTL
	if ttl <= 0 {
		ttl = DefaultDeleteTicketTTL
	}
	newID := opts.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}

	return &Controller{
		service: opts.Service,
		store:   NewStore(),
		logger:  logger.Named("inventory"),
		bus:     newBus(),
		literal: literal,
		limit:   limit,
		locale:  locale,
		clock:   clock,
		newID:   newID,

		ticketTTL: ttl,
	}, nil
}

// Store exposes the underlying catalog store.
func (c *Controller) Store() *Store {
	return c.store
}

// ConfirmationLiteral returns the text an operator must type to delete.
func (c *Controller) ConfirmationLiteral() string {
	return c.literal
}

// Load performs the startup fetch. On failure the store is emptied.
func (c *Controller) Load(ctx context.Context) error {
	products, err := c.service.List(ctx)
	if err != nil {
		c.store.ReplaceAll(nil)
		c.logger.Warn("initial catalog load failed", zap.Error(err))
		return fmt.Errorf("inventory: load: %w", err)
	}
	c.replace(products, EventLoaded, "")
	return nil
}

// Refresh refetches the catalog. On failure the store keeps its previous contents.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.relist(ctx, EventRefresh, ""); err != nil {
		return fmt.Errorf("inventory: refresh: %w", err)
	}
	return nil
}

// Snapshot is everything a page render needs.
type Snapshot struct {
	State        ViewState
	Products     []catalog.Product
	Categories   []CategoryOption
	Stats        Stats
	Count        int
	RecordLimit  int
	LimitReached bool
}

// Snapshot projects the current store through state. Stats cover the full catalog.
func (c *Controller) Snapshot(state ViewState) Snapshot {
	all := c.store.Products()
	options := Categories(all, c.locale)
	state = Reconcile(state, options)
	return Snapshot{
		State:        state,
		Products:     Project(all, state),
		Categories:   options,
		Stats:        ComputeStats(all),
		Count:        len(all),
		RecordLimit:  c.limit,
		LimitReached: len(all) >= c.limit,
	}
}

// Create validates input and appends a new product.
func (c *Controller) Create(ctx context.Context, input ProductInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if c.store.Count() >= c.limit {
		return &catalog.ValidationError{
			Field:   "catalog",
			Message: fmt.Sprintf("Se alcanzó el límite de %d registros.", c.limit),
		}
	}
	in := input.normalized()
	if _, err := c.service.Create(ctx, catalog.Draft{
		Title:    in.Title,
		Category: in.Category,
		ImageURL: in.ImageURL,
		Stock:    in.Stock,
		Price:    in.Price,
	}); err != nil {
		c.logger.Warn("create product failed", zap.String("title", in.Title), zap.Error(err))
		return fmt.Errorf("inventory: create: %w", err)
	}
	c.logger.Info("product created", zap.String("title", in.Title))
	return c.relist(ctx, EventCreated, in.Title)
}

// EditTarget pins the business key of the row being edited.
type EditTarget struct {
	BusinessKey string
	Product     catalog.Product
}

// BeginEdit captures the current row for businessKey.
func (c *Controller) BeginEdit(businessKey string) (EditTarget, error) {
	p, ok := c.store.Find(businessKey)
	if !ok {
		return EditTarget{}, ErrProductNotFound
	}
	return EditTarget{BusinessKey: p.BusinessKey, Product: p}, nil
}

// Update overwrites category, image, stock and price on the target row.
// The title in input is checked but never sent; rename is not supported.
func (c *Controller) Update(ctx context.Context, target EditTarget, input ProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		input.Title = target.Product.Title
	}
	if err := input.Validate(); err != nil {
		return err
	}
	in := input.normalized()
	changes := catalog.Changes{
		Category: &in.Category,
		ImageURL: &in.ImageURL,
		Stock:    &in.Stock,
		Price:    &in.Price,
	}
	if _, err := c.service.Update(ctx, target.BusinessKey, changes); err != nil {
		c.logger.Warn("update product failed", zap.String("key", target.BusinessKey), zap.Error(err))
		return fmt.Errorf("inventory: update: %w", err)
	}
	c.logger.Info("product updated", zap.String("key", target.BusinessKey))
	return c.relist(ctx, EventUpdated, target.BusinessKey)
}

// AdjustStock adds or removes delta units. The current stock is re-read from the
// endpoint first; a result below zero is refused without writing.
func (c *Controller) AdjustStock(ctx context.Context, businessKey string, delta int, dir Direction) error {
	if delta <= 0 {
		return &catalog.ValidationError{Field: "delta", Message: "La cantidad debe ser un entero positivo."}
	}
	if delta > catalog.MaxStock {
		return &catalog.ValidationError{Field: "delta", Message: fmt.Sprintf("La cantidad no puede superar %d.", catalog.MaxStock)}
	}

	fresh, err := c.service.List(ctx)
	if err != nil {
		return fmt.Errorf("inventory: adjust stock: read current: %w", err)
	}
	current, ok := findByKey(fresh, businessKey)
	if !ok {
		return ErrProductNotFound
	}

	if dir == DirectionAdd && delta > catalog.MaxStock-current.Stock {
		return &catalog.ValidationError{
			Field:   "delta",
			Message: fmt.Sprintf("El inventario no puede superar %d: disponible %d.", catalog.MaxStock, current.Stock),
		}
	}
	next := current.Stock + delta
	if dir == DirectionSubtract {
		next = current.Stock - delta
	}
	if next < 0 {
		return &catalog.ValidationError{
			Field:   "delta",
			Message: fmt.Sprintf("No hay suficiente inventario: disponible %d.", current.Stock),
		}
	}

	if _, err := c.service.Update(ctx, current.BusinessKey, catalog.Changes{Stock: &next}); err != nil {
		c.logger.Warn("adjust stock failed", zap.String("key", current.BusinessKey), zap.Error(err))
		return fmt.Errorf("inventory: adjust stock: %w", err)
	}
	c.logger.Info("stock adjusted",
		zap.String("key", current.BusinessKey),
		zap.Int("from", current.Stock),
		zap.Int("to", next),
	)
	return c.relist(ctx, EventStock, current.BusinessKey)
}

func (c *Controller) relist(ctx context.Context, kind EventKind, key string) error {
	products, err := c.service.List(ctx)
	if err != nil {
		c.logger.Warn("catalog relist failed", zap.String("kind", string(kind)), zap.Error(err))
		return fmt.Errorf("relist: %w", err)
	}
	c.replace(products, kind, key)
	return nil
}

func (c *Controller) replace(products []catalog.Product, kind EventKind, key string) {
	c.store.ReplaceAll(products)
	stats := ComputeStats(products)
	c.logger.Debug("catalog replaced", zap.String("kind", string(kind)), zap.Int("count", stats.Total))
	c.publish(kind, key, stats)
}

func findByKey(products []catalog.Product, key string) (catalog.Product, bool) {
	key = strings.TrimSpace(key)
	for _, p := range products {
		if p.BusinessKey == key {
			return p, true
		}
	}
	return catalog.Product{}, false
}
