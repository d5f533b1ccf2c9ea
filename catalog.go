package inferschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/inferschema/pkg/adapters/memory"
	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/aretw0/inferschema/pkg/tasks/texttospeech"
)

var (
	// ErrUnknownRecord is returned when a name resolves to no record.
	ErrUnknownRecord = errors.New("unknown record")

	// ErrBuiltinRecord is returned when registering or deleting a name
	// that belongs to a built-in record.
	ErrBuiltinRecord = errors.New("built-in record cannot be changed")

	// ErrRecordCycle is returned when stored definitions reference each
	// other in a loop.
	ErrRecordCycle = errors.New("record reference cycle")

	// ErrInvalidDefinition wraps every reason Register refuses a definition
	// other than ErrBuiltinRecord and store failures.
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Catalog resolves record names and decodes payloads against them.
// It is safe for concurrent use.
type Catalog struct {
	builtin map[string]*schema.Record
	store   ports.DefinitionStore
	logger  *slog.Logger
	hooks   Hooks

	mu         sync.RWMutex
	cache      map[string]*schema.Record
	generation uint64
	unknown    schema.UnknownFieldPolicy
	maxDepth   int
}

// Option defines a functional option for configuring the Catalog.
type Option func(*Catalog)

// WithStore sets where registered definitions are kept (default: memory).
func WithStore(s ports.DefinitionStore) Option {
	return func(c *Catalog) {
		c.store = s
	}
}

// WithLogger sets a custom structured logger for the catalog.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(c *Catalog) {
		c.hooks = hooks
	}
}

// WithUnknownFields sets the default policy for undeclared keys.
func WithUnknownFields(p schema.UnknownFieldPolicy) Option {
	return func(c *Catalog) {
		c.unknown = p
	}
}

// WithMaxDepth sets the default nesting cap for decoding.
func WithMaxDepth(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithRecords adds built-in records next to the text-to-speech family.
func WithRecords(records ...*schema.Record) Option {
	return func(c *Catalog) {
		for _, r := range records {
			c.builtin[r.Name()] = r
		}
	}
}

// New creates a catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		builtin:  make(map[string]*schema.Record),
		cache:    make(map[string]*schema.Record),
		unknown:  schema.DropUnknown,
		maxDepth: schema.DefaultMaxDepth,
	}
	for _, r := range texttospeech.Records() {
		c.builtin[r.Name()] = r
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Store returns the definition store backing the catalog.
func (c *Catalog) Store() ports.DefinitionStore {
	return c.store
}

// SetDecodeDefaults replaces the default decode policy and depth cap.
// Used when configuration is reloaded.
func (c *Catalog) SetDecodeDefaults(p schema.UnknownFieldPolicy, maxDepth int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unknown = p
	if maxDepth > 0 {
		c.maxDepth = maxDepth
	}
}

// DecodeDefaults returns the current default policy and depth cap.
func (c *Catalog) DecodeDefaults() (schema.UnknownFieldPolicy, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unknown, c.maxDepth
}

// IsBuiltin reports whether name is a built-in record.
func (c *Catalog) IsBuiltin(name string) bool {
	_, ok := c.builtin[name]
	return ok
}

// Records lists every resolvable record name, sorted.
func (c *Catalog) Records(ctx context.Context) ([]string, error) {
	stored, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	names := make([]string, 0, len(c.builtin)+len(stored))
	for name := range c.builtin {
		names = append(names, name)
	}
	for _, name := range stored {
		if !c.IsBuiltin(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Record resolves name to a record. Stored definitions are built on first
// use and cached until the catalog changes.
func (c *Catalog) Record(ctx context.Context, name string) (*schema.Record, error) {
	return c.resolve(ctx, name, make(map[string]bool), true)
}

// Resolver adapts the catalog to schema.Resolver for ParseTypeWith and
// Definition.Build.
func (c *Catalog) Resolver(ctx context.Context) schema.Resolver {
	return schema.ResolverFunc(func(name string) (*schema.Record, error) {
		return c.Record(ctx, name)
	})
}

// resolve builds name from the store, tracking the names being built in
// visiting. Without cached, every dependency is rebuilt from the store,
// which is how Register sees cycles through records that are already cached.
func (c *Catalog) resolve(ctx context.Context, name string, visiting map[string]bool, cached bool) (*schema.Record, error) {
	if r, ok := c.builtin[name]; ok {
		return r, nil
	}

	c.mu.RLock()
	r, ok := c.cache[name]
	gen := c.generation
	c.mu.RUnlock()
	if ok && cached {
		return r, nil
	}

	if visiting[name] {
		return nil, fmt.Errorf("%w through %s", ErrRecordCycle, name)
	}

	def, err := c.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ports.ErrDefinitionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, name)
		}
		return nil, fmt.Errorf("load definition %s: %w", name, err)
	}

	visiting[name] = true
	r, err = def.Build(schema.ResolverFunc(func(dep string) (*schema.Record, error) {
		return c.resolve(ctx, dep, visiting, cached)
	}))
	delete(visiting, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached && c.generation == gen {
		c.cache[name] = r
	}
	c.mu.Unlock()
	return r, nil
}

// Definition returns the declarative form of a record.
func (c *Catalog) Definition(ctx context.Context, name string) (schema.Definition, error) {
	if r, ok := c.builtin[name]; ok {
		return schema.DefinitionOf(r), nil
	}
	def, err := c.store.Load(ctx, name)
	if errors.Is(err, ports.ErrDefinitionNotFound) {
		return schema.Definition{}, fmt.Errorf("%w: %s", ErrUnknownRecord, name)
	}
	return def, err
}

// Decode validates wire against the named record using the catalog's
// defaults, then opts.
func (c *Catalog) Decode(ctx context.Context, name string, wire map[string]any, opts ...schema.Option) (*schema.Object, error) {
	start := time.Now()
	obj, err := c.decode(ctx, name, opts, func(r *schema.Record, o []schema.Option) (*schema.Object, error) {
		return schema.Decode(r, wire, o...)
	})
	c.observe(ctx, name, start, err)
	return obj, err
}

// DecodeJSON is Decode for a raw JSON document. Numbers are read exactly.
func (c *Catalog) DecodeJSON(ctx context.Context, name string, data []byte, opts ...schema.Option) (*schema.Object, error) {
	start := time.Now()
	obj, err := c.decode(ctx, name, opts, func(r *schema.Record, o []schema.Option) (*schema.Object, error) {
		return schema.DecodeJSON(r, data, o...)
	})
	c.observe(ctx, name, start, err)
	return obj, err
}

// Normalize decodes wire and returns its canonical wire form.
func (c *Catalog) Normalize(ctx context.Context, name string, wire map[string]any, opts ...schema.Option) (map[string]any, error) {
	obj, err := c.Decode(ctx, name, wire, opts...)
	if err != nil {
		return nil, err
	}
	return obj.ToWire(), nil
}

func (c *Catalog) decode(ctx context.Context, name string, opts []schema.Option, fn func(*schema.Record, []schema.Option) (*schema.Object, error)) (*schema.Object, error) {
	r, err := c.Record(ctx, name)
	if err != nil {
		return nil, err
	}
	unknown, maxDepth := c.DecodeDefaults()
	all := append([]schema.Option{schema.WithUnknownFields(unknown), schema.WithMaxDepth(maxDepth)}, opts...)
	return fn(r, all)
}

func (c *Catalog) observe(ctx context.Context, name string, start time.Time, err error) {
	event := &DecodeEvent{
		Record:   name,
		Outcome:  OutcomeOK,
		Duration: time.Since(start),
		Err:      err,
	}
	if err != nil {
		if violations := schema.Violations(err); len(violations) > 0 {
			event.Outcome = OutcomeInvalid
			event.Violations = len(violations)
		} else {
			event.Outcome = OutcomeError
		}
		c.logger.Debug("decode failed", "record", name, "outcome", event.Outcome, "violations", event.Violations, "error", err)
	}
	if c.hooks.OnDecode != nil {
		c.hooks.OnDecode(ctx, event)
	}
}

// Register validates def, checks that every record it references resolves,
// and stores it. Registering an existing name replaces it.
func (c *Catalog) Register(ctx context.Context, def schema.Definition) (*schema.Record, error) {
	if c.IsBuiltin(def.Name) {
		return nil, fmt.Errorf("%w: %s", ErrBuiltinRecord, def.Name)
	}
	if err := def.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	visiting := map[string]bool{def.Name: true}
	r, err := def.Build(schema.ResolverFunc(func(dep string) (*schema.Record, error) {
		if visiting[dep] {
			return nil, fmt.Errorf("%w through %s", ErrRecordCycle, dep)
		}
		return c.resolve(ctx, dep, visiting, false)
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: register %s: %w", ErrInvalidDefinition, def.Name, err)
	}

	if err := c.store.Save(ctx, def); err != nil {
		return nil, fmt.Errorf("save definition %s: %w", def.Name, err)
	}
	c.Invalidate()

	c.logger.Info("record registered", "record", def.Name, "fields", len(def.Fields))
	c.changed(ctx, def.Name, ChangeRegister)
	return r, nil
}

// Delete removes a registered record. Records that reference it stop
// resolving.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	if c.IsBuiltin(name) {
		return fmt.Errorf("%w: %s", ErrBuiltinRecord, name)
	}
	if _, err := c.store.Load(ctx, name); err != nil {
		if errors.Is(err, ports.ErrDefinitionNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, name)
		}
		return err
	}
	if err := c.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete definition %s: %w", name, err)
	}
	c.Invalidate()

	c.logger.Info("record deleted", "record", name)
	c.changed(ctx, name, ChangeDelete)
	return nil
}

// Invalidate drops every cached record. Dependents are rebuilt on next use,
// so a change to one definition reaches all records that embed it.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*schema.Record)
	c.generation++
}

func (c *Catalog) changed(ctx context.Context, name string, kind ChangeKind) {
	if c.hooks.OnChange != nil {
		c.hooks.OnChange(ctx, &ChangeEvent{Record: name, Kind: kind})
	}
}

// Watch invalidates the cache whenever the store reports an external change.
// It returns once watching has started; the watch ends with ctx.
// Returns an error if the store does not support watching.
func (c *Catalog) Watch(ctx context.Context) error {
	w, ok := c.store.(ports.Watchable)
	if !ok {
		return fmt.Errorf("current store does not support watching")
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for name := range events {
			c.Invalidate()
			c.logger.Debug("definition changed on disk", "record", name)
			c.changed(ctx, name, ChangeExternal)
		}
	}()
	return nil
}
