package rewrite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/rewrite"
)

func TestStatic_Rewrite(t *testing.T) {
	s := &rewrite.Static{Replacements: map[friction.Category]map[string]string{
		friction.Negation: {"can't": "can", "can't stop": "keep going"},
	}}

	out, err := s.Rewrite(context.Background(), rewrite.Request{Category: friction.Negation, Text: "I can't stop and can't sleep."})
	require.NoError(t, err)
	assert.Equal(t, "I keep going and can sleep.", out)

	_, err = s.Rewrite(context.Background(), rewrite.Request{Category: friction.Modal, Text: "You should."})
	assert.ErrorIs(t, err, rewrite.ErrNoRewrite)
}

type named struct {
	rewrite.Func
	name string
}

func (n named) Name() string { return n.name }

func TestChain_FallsThrough(t *testing.T) {
	var order []string
	failing := named{name: "a", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		order = append(order, "a")
		return "", errors.New("boom")
	}}
	empty := named{name: "b", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		order = append(order, "b")
		return "", nil
	}}
	ok := named{name: "c", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		order = append(order, "c")
		return "done", nil
	}}

	chain := rewrite.NewChain(nil, failing, empty, ok)
	assert.Equal(t, "a,b,c", chain.Name())

	out, err := chain.Rewrite(context.Background(), rewrite.Request{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChain_AllFail(t *testing.T) {
	failing := named{name: "a", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		return "", errors.New("boom")
	}}

	_, err := rewrite.NewChain(nil, failing).Rewrite(context.Background(), rewrite.Request{Text: "x"})
	assert.ErrorIs(t, err, rewrite.ErrNoRewrite)
	assert.Contains(t, err.Error(), "boom")
}

type memCache struct {
	data  map[string]string
	saves int
}

func (m *memCache) key(backend string, req rewrite.Request) string {
	return backend + "|" + string(req.Category) + "|" + req.Context + "|" + req.Text
}

func (m *memCache) Lookup(_ context.Context, backend string, req rewrite.Request) (string, bool, error) {
	v, ok := m.data[m.key(backend, req)]
	return v, ok, nil
}

func (m *memCache) Save(_ context.Context, backend string, req rewrite.Request, out string) error {
	m.saves++
	m.data[m.key(backend, req)] = out
	return nil
}

func TestCached_HitsAfterFirstCall(t *testing.T) {
	calls := 0
	next := named{name: "stub", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		calls++
		return "You might call her.", nil
	}}
	cache := &memCache{data: map[string]string{}}
	c := rewrite.NewCached(next, cache, nil)

	req := rewrite.Request{Category: friction.Modal, Context: "moderate", Text: "You should call her."}
	for i := 0; i < 3; i++ {
		out, err := c.Rewrite(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "You might call her.", out)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.saves)
}

func TestCached_EscalationBypassesCache(t *testing.T) {
	calls := 0
	next := named{name: "stub", Func: func(ctx context.Context, req rewrite.Request) (string, error) {
		calls++
		return "", rewrite.ErrNoRewrite
	}}
	cache := &memCache{data: map[string]string{}}
	c := rewrite.NewCached(next, cache, nil)

	_, err := c.Rewrite(context.Background(), rewrite.Request{Category: friction.Negation, Text: "Not now.", Escalate: true})
	assert.ErrorIs(t, err, rewrite.ErrNoRewrite)
	_, err = c.Rewrite(context.Background(), rewrite.Request{Category: friction.Negation, Text: "Not now."})
	assert.ErrorIs(t, err, rewrite.ErrNoRewrite)
	assert.Equal(t, 2, calls)
	assert.Zero(t, cache.saves)
}
