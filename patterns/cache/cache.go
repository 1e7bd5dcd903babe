package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Cache wraps an inner [wrapper.Wrapper] and serves repeated queries from a
// [Store]. Response, block and object operations are cached; streams always
// pass through. Like retry, the cache implements the contract directly: a
// hit answers without any dispatch, which the decorator hook protocol does
// not allow.
//
// A broken store never breaks queries. Store failures on lookup count as
// misses, store failures on save are dropped after being recorded on the
// ambient span; the backend answer still reaches the caller either way.
type Cache struct {
	inner wrapper.Wrapper
	store Store
	ttl   time.Duration
}

// Ensure Cache implements the contract at compile time.
var _ wrapper.Wrapper = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL bounds the lifetime of new entries. Zero (the default) stores
// entries without expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New builds a Cache around inner, backed by store.
func New(inner wrapper.Wrapper, store Store, options ...Option) *Cache {
	c := &Cache{inner: inner, store: store}
	for _, option := range options {
		option(c)
	}
	return c
}

// cachedEntry is the JSON envelope stored per query. Text and Tokens serve
// response and block hits, Object carries the encoded decode result for
// object hits.
type cachedEntry struct {
	Text   string          `json:"text,omitempty"`
	Tokens int             `json:"tokens,omitempty"`
	Object json.RawMessage `json:"object,omitempty"`
}

// QueryResponse implements [wrapper.Wrapper]. A hit returns the recorded
// text and token count without touching the backend.
func (c *Cache) QueryResponse(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	key, keyErr := computeKey(wrapper.OpResponse, "", "", prompt, api)
	if keyErr == nil {
		if entry, ok := c.lookup(ctx, key); ok {
			return entry.Text, entry.Tokens, nil
		}
	}

	text, tokens, err := c.inner.QueryResponse(ctx, prompt, api)
	if err != nil {
		return "", 0, err
	}

	if keyErr == nil {
		c.save(ctx, key, cachedEntry{Text: text, Tokens: tokens})
	}
	return text, tokens, nil
}

// QueryStream implements [wrapper.Wrapper]. Streams are never cached.
func (c *Cache) QueryStream(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	return c.inner.QueryStream(ctx, prompt, api)
}

// QueryObject implements [wrapper.Wrapper]. A hit decodes the cached JSON
// straight into target; an entry that no longer decodes falls through to
// the backend and is overwritten.
func (c *Cache) QueryObject(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
	key, keyErr := computeKey(wrapper.OpObject, "", fmt.Sprintf("%T", target), prompt, api)
	if keyErr == nil {
		if entry, ok := c.lookup(ctx, key); ok && len(entry.Object) > 0 {
			if err := json.Unmarshal(entry.Object, target); err == nil {
				return nil
			}
		}
	}

	if err := c.inner.QueryObject(ctx, target, prompt, api); err != nil {
		return err
	}

	if keyErr == nil {
		if encoded, err := json.Marshal(target); err == nil {
			c.save(ctx, key, cachedEntry{Object: encoded})
		}
	}
	return nil
}

// QueryBlock implements [wrapper.Wrapper]. The block type is part of the
// key, so a python block and a json block over the same arguments are
// distinct entries.
func (c *Cache) QueryBlock(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	key, keyErr := computeKey(wrapper.OpBlock, blockType, "", prompt, api)
	if keyErr == nil {
		if entry, ok := c.lookup(ctx, key); ok {
			return entry.Text, nil
		}
	}

	text, err := c.inner.QueryBlock(ctx, blockType, prompt, api)
	if err != nil {
		return "", err
	}

	if keyErr == nil {
		c.save(ctx, key, cachedEntry{Text: text})
	}
	return text, nil
}

// lookup fetches and decodes one entry, reporting hit or miss on the
// ambient span. Store errors and corrupt entries count as misses.
func (c *Cache) lookup(ctx context.Context, key string) (cachedEntry, bool) {
	span := observability.SpanFromContext(ctx)

	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		if span != nil {
			span.RecordError(fmt.Errorf("cache lookup: %w", err))
		}
		return cachedEntry{}, false
	}
	if !ok {
		if span != nil {
			span.AddEvent(observability.EventCacheMiss,
				observability.String(observability.AttrCacheKey, key),
			)
		}
		return cachedEntry{}, false
	}

	var entry cachedEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		if span != nil {
			span.RecordError(fmt.Errorf("corrupt cache entry %s: %w", key, err))
		}
		return cachedEntry{}, false
	}

	if span != nil {
		span.AddEvent(observability.EventCacheHit,
			observability.String(observability.AttrCacheKey, key),
		)
		span.SetAttributes(observability.Bool(observability.AttrCacheHit, true))
	}
	return entry, true
}

// save encodes and stores one entry under the configured TTL.
func (c *Cache) save(ctx context.Context, key string, entry cachedEntry) {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
		if span := observability.SpanFromContext(ctx); span != nil {
			span.RecordError(fmt.Errorf("cache save: %w", err))
		}
	}
}
