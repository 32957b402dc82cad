package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authrules/pkg/retry"
)

type fakeStore struct {
	fields    []FieldValueSet
	templates []CustomFieldTemplate
	err       error
	calls     int
}

func (f *fakeStore) FieldValues(ctx context.Context, field string) (*FieldValueSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, set := range f.fields {
		if set.Field == field {
			copied := set
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) AllFieldValues(ctx context.Context) ([]FieldValueSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func (f *fakeStore) Templates(ctx context.Context) ([]CustomFieldTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

func fastRetry() retry.Policy {
	return retry.Policy{
		MaxAttempts:     2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1.0,
	}
}

func testFields() []FieldValueSet {
	return []FieldValueSet{
		{Field: "REQUEST_URGENCY", Values: []Value{{Code: "URGENT", Active: true}, {Code: "STANDARD", Active: true}}},
		{Field: "MEMBER_CLIENT", Values: []Value{{Code: "ACME", Active: true}}},
	}
}

func testTemplates() []CustomFieldTemplate {
	return []CustomFieldTemplate{
		{TemplateID: "tpl-1", Association: "MEMBER", Name: "Member tier", Values: []string{"GOLD", "SILVER"}},
	}
}

func TestCacheWarmFromStore(t *testing.T) {
	store := &fakeStore{fields: testFields(), templates: testTemplates()}
	cache := NewCache(store, WithRetryPolicy(fastRetry()))

	require.NoError(t, cache.Warm(context.Background()))

	set, ok := cache.FieldValues("REQUEST_URGENCY")
	require.True(t, ok)
	assert.Len(t, set.Values, 2)

	_, ok = cache.FieldValues("UNKNOWN")
	assert.False(t, ok)

	assert.Len(t, cache.AllFieldValues(), 2)

	templates := cache.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, "tpl-1", templates[0].TemplateID)
}

func TestCacheWarmFallsBackToFile(t *testing.T) {
	bulk := BulkFile{Fields: testFields(), Templates: testTemplates()}
	raw, err := json.Marshal(bulk)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	store := &fakeStore{err: fmt.Errorf("connection refused")}
	cache := NewCache(store, WithRetryPolicy(fastRetry()), WithFallbackFile(path))

	require.NoError(t, cache.Warm(context.Background()))

	set, ok := cache.FieldValues("MEMBER_CLIENT")
	require.True(t, ok)
	assert.Equal(t, "ACME", set.Values[0].Code)
	assert.Len(t, cache.Templates(), 1)
}

func TestCacheWarmFailsWithoutAnySource(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("connection refused")}
	cache := NewCache(store, WithRetryPolicy(fastRetry()))

	err := cache.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dictionary warm-up failed")
}

func TestCacheRefresh(t *testing.T) {
	store := &fakeStore{fields: testFields(), templates: testTemplates()}
	cache := NewCache(store, WithRetryPolicy(fastRetry()))
	require.NoError(t, cache.Warm(context.Background()))

	store.fields = append(store.fields, FieldValueSet{
		Field:  "PROVIDER_SPECIALTY",
		Values: []Value{{Code: "CARDIOLOGY", Active: true}},
	})

	require.NoError(t, cache.Refresh(context.Background()))

	_, ok := cache.FieldValues("PROVIDER_SPECIALTY")
	assert.True(t, ok)
}
