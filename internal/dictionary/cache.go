package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"authrules/internal/constants"
	"authrules/internal/logger"
	"authrules/pkg/circuitbreaker"
	"authrules/pkg/metrics"
	"authrules/pkg/retry"
)

const (
	redisFieldsKey    = constants.CacheKeyPrefixDictionary + "fields"
	redisTemplatesKey = constants.CacheKeyPrefixDictionary + "templates"
)

// Cache holds dictionary data in memory for the validators and the rule
// builder endpoints. It is built once at startup and passed by reference;
// sources are layered redis snapshot, then the dictionary database behind
// a circuit breaker, then an optional bulk file.
type Cache struct {
	store        Store
	redis        *redis.Client
	breaker      *circuitbreaker.Wrapper
	log          logger.Logger
	fallbackPath string
	ttl          time.Duration
	retryPolicy  retry.Policy

	mu        sync.RWMutex
	fields    map[string]FieldValueSet
	templates []CustomFieldTemplate
}

type CacheOption func(*Cache)

func WithRedis(client *redis.Client, ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.redis = client
		c.ttl = ttl
	}
}

func WithFallbackFile(path string) CacheOption {
	return func(c *Cache) {
		c.fallbackPath = path
	}
}

func WithLogger(log logger.Logger) CacheOption {
	return func(c *Cache) {
		c.log = log
	}
}

func WithRetryPolicy(policy retry.Policy) CacheOption {
	return func(c *Cache) {
		c.retryPolicy = policy
	}
}

func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:       store,
		log:         logger.NopLogger(),
		ttl:         time.Hour,
		retryPolicy: retry.DefaultPolicy(),
		fields:      make(map[string]FieldValueSet),
	}
	c.breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("dictionary-store"))

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Warm loads field dictionaries and custom field templates concurrently.
// A failed warm is fatal to startup: validation without dictionary data
// would let bad rule values through.
func (c *Cache) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.refreshFields(gctx)
	})
	g.Go(func() error {
		return c.refreshTemplates(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("dictionary warm-up failed: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	c.log.InfowCtx(ctx, "Dictionary cache warmed",
		"fields", len(c.fields), "templates", len(c.templates))
	return nil
}

// Refresh re-pulls everything from the backing sources, bypassing the
// redis snapshot so operators can force a reload after dictionary edits.
func (c *Cache) Refresh(ctx context.Context) error {
	sets, err := c.fetchFieldsRemote(ctx)
	if err != nil {
		return err
	}
	templates, err := c.fetchTemplatesRemote(ctx)
	if err != nil {
		return err
	}

	c.storeFields(ctx, sets)
	c.storeTemplates(ctx, templates)
	return nil
}

// FieldValues returns the dictionary for one standard field.
func (c *Cache) FieldValues(field string) (FieldValueSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.fields[field]
	return set, ok
}

func (c *Cache) AllFieldValues() []FieldValueSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]FieldValueSet, 0, len(c.fields))
	for _, set := range c.fields {
		out = append(out, set)
	}
	return out
}

func (c *Cache) Templates() []CustomFieldTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CustomFieldTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Cache) refreshFields(ctx context.Context) error {
	if sets, ok := c.fieldsFromRedis(ctx); ok {
		metrics.DictionaryCacheHits.WithLabelValues("redis").Inc()
		c.storeFieldsLocal(sets)
		return nil
	}
	metrics.DictionaryCacheMisses.WithLabelValues("redis").Inc()

	sets, err := c.fetchFieldsRemote(ctx)
	if err != nil {
		sets, ferr := c.fieldsFromFile()
		if ferr != nil {
			return err
		}
		c.log.WarnwCtx(ctx, "Dictionary store unavailable, using bulk file", "error", err)
		metrics.DictionaryCacheHits.WithLabelValues("file").Inc()
		c.storeFieldsLocal(sets)
		return nil
	}

	c.storeFields(ctx, sets)
	return nil
}

func (c *Cache) refreshTemplates(ctx context.Context) error {
	if templates, ok := c.templatesFromRedis(ctx); ok {
		metrics.DictionaryCacheHits.WithLabelValues("redis").Inc()
		c.storeTemplatesLocal(templates)
		return nil
	}
	metrics.DictionaryCacheMisses.WithLabelValues("redis").Inc()

	templates, err := c.fetchTemplatesRemote(ctx)
	if err != nil {
		templates, ferr := c.templatesFromFile()
		if ferr != nil {
			return err
		}
		c.log.WarnwCtx(ctx, "Dictionary store unavailable, using bulk file", "error", err)
		metrics.DictionaryCacheHits.WithLabelValues("file").Inc()
		c.storeTemplatesLocal(templates)
		return nil
	}

	c.storeTemplates(ctx, templates)
	return nil
}

func (c *Cache) fetchFieldsRemote(ctx context.Context) ([]FieldValueSet, error) {
	if c.store == nil {
		return nil, fmt.Errorf("no dictionary store configured")
	}

	var sets []FieldValueSet
	err := retry.RetryWithCallback(ctx, c.retryPolicy, func() error {
		result, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return c.store.AllFieldValues(ctx)
		})
		if err != nil {
			return err
		}
		sets = result.([]FieldValueSet)
		return nil
	}, c.logRetry(ctx, "field dictionaries"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field dictionaries: %w", err)
	}
	return sets, nil
}

func (c *Cache) fetchTemplatesRemote(ctx context.Context) ([]CustomFieldTemplate, error) {
	if c.store == nil {
		return nil, fmt.Errorf("no dictionary store configured")
	}

	var templates []CustomFieldTemplate
	err := retry.RetryWithCallback(ctx, c.retryPolicy, func() error {
		result, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return c.store.Templates(ctx)
		})
		if err != nil {
			return err
		}
		templates = result.([]CustomFieldTemplate)
		return nil
	}, c.logRetry(ctx, "custom field templates"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch custom field templates: %w", err)
	}
	return templates, nil
}

func (c *Cache) logRetry(ctx context.Context, what string) func(int, error, time.Duration) {
	return func(attempt int, err error, nextDelay time.Duration) {
		c.log.WarnwCtx(ctx, "Retrying dictionary fetch",
			"what", what,
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	}
}

func (c *Cache) fieldsFromRedis(ctx context.Context) ([]FieldValueSet, bool) {
	if c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, redisFieldsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var sets []FieldValueSet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, false
	}
	return sets, true
}

func (c *Cache) templatesFromRedis(ctx context.Context) ([]CustomFieldTemplate, bool) {
	if c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, redisTemplatesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var templates []CustomFieldTemplate
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, false
	}
	return templates, true
}

func (c *Cache) fieldsFromFile() ([]FieldValueSet, error) {
	bulk, err := c.readBulkFile()
	if err != nil {
		return nil, err
	}
	return bulk.Fields, nil
}

func (c *Cache) templatesFromFile() ([]CustomFieldTemplate, error) {
	bulk, err := c.readBulkFile()
	if err != nil {
		return nil, err
	}
	return bulk.Templates, nil
}

func (c *Cache) readBulkFile() (*BulkFile, error) {
	if c.fallbackPath == "" {
		return nil, fmt.Errorf("no bulk file configured")
	}
	raw, err := os.ReadFile(c.fallbackPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk file: %w", err)
	}
	var bulk BulkFile
	if err := json.Unmarshal(raw, &bulk); err != nil {
		return nil, fmt.Errorf("failed to parse bulk file: %w", err)
	}
	return &bulk, nil
}

func (c *Cache) storeFields(ctx context.Context, sets []FieldValueSet) {
	c.storeFieldsLocal(sets)

	if c.redis != nil {
		if raw, err := json.Marshal(sets); err == nil {
			if err := c.redis.Set(ctx, redisFieldsKey, raw, c.ttl).Err(); err != nil {
				c.log.WarnwCtx(ctx, "Failed to write dictionary snapshot to redis", "error", err)
			}
		}
	}
}

func (c *Cache) storeTemplates(ctx context.Context, templates []CustomFieldTemplate) {
	c.storeTemplatesLocal(templates)

	if c.redis != nil {
		if raw, err := json.Marshal(templates); err == nil {
			if err := c.redis.Set(ctx, redisTemplatesKey, raw, c.ttl).Err(); err != nil {
				c.log.WarnwCtx(ctx, "Failed to write template snapshot to redis", "error", err)
			}
		}
	}
}

func (c *Cache) storeFieldsLocal(sets []FieldValueSet) {
	fields := make(map[string]FieldValueSet, len(sets))
	for _, set := range sets {
		fields[set.Field] = set
	}

	c.mu.Lock()
	c.fields = fields
	c.mu.Unlock()
}

func (c *Cache) storeTemplatesLocal(templates []CustomFieldTemplate) {
	c.mu.Lock()
	c.templates = templates
	c.mu.Unlock()
}
