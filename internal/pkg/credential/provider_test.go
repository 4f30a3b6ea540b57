package credential

import (
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/pkg/graph"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExchanger struct {
	valid      map[string]bool
	checkErrs  []error
	exchanged  string
	expiresIn  int64
	checks     int
	exchanges  int
	lastSource string
}

func (f *fakeExchanger) CheckToken(_ context.Context, token, _ string) (bool, error) {
	f.checks++
	if len(f.checkErrs) > 0 {
		err := f.checkErrs[0]
		f.checkErrs = f.checkErrs[1:]
		return false, err
	}
	return f.valid[token], nil
}

func (f *fakeExchanger) ExchangeToken(_ context.Context, _, _, token string) (*graph.Token, error) {
	f.exchanges++
	f.lastSource = token
	return &graph.Token{AccessToken: f.exchanged, ExpiresIn: f.expiresIn}, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttl[key] = ttl
	return nil
}

var (
	testApp     = config.MetaAppConfig{AppID: "app", AppSecret: "secret"}
	testAccount = config.AccountConfig{ID: "1784", AccessToken: "short", LongLivedToken: "long"}
)

func noWait() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
}

func TestRefreshing_ValidTokenIsCached(t *testing.T) {
	ex := &fakeExchanger{valid: map[string]bool{"short": true}}
	cache := newFakeCache()
	p := NewRefreshing(testAccount, testApp, ex, cache, WithBackOff(noWait))

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "short", token)

	token, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "short", token)
	assert.Equal(t, 1, ex.checks)
	assert.Equal(t, 0, ex.exchanges)
	assert.Equal(t, checkedTokenTTL, cache.ttl["meta:token:1784"])
}

func TestRefreshing_ExchangesRejectedToken(t *testing.T) {
	ex := &fakeExchanger{valid: map[string]bool{}, exchanged: "fresh", expiresIn: 7200}
	cache := newFakeCache()
	p := NewRefreshing(testAccount, testApp, ex, cache, WithBackOff(noWait))

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "long", ex.lastSource)
	assert.Equal(t, "fresh", cache.data["meta:token:1784"])
	assert.Equal(t, time.Hour, cache.ttl["meta:token:1784"])
}

func TestRefreshing_RetriesTransientErrors(t *testing.T) {
	ex := &fakeExchanger{
		valid:     map[string]bool{"short": true},
		checkErrs: []error{&graph.APIError{StatusCode: http.StatusBadGateway, Message: "reset"}},
	}
	p := NewRefreshing(testAccount, testApp, ex, newFakeCache(), WithBackOff(noWait))

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "short", token)
	assert.Equal(t, 2, ex.checks)
}

func TestRefreshing_DoesNotRetryClientErrors(t *testing.T) {
	ex := &fakeExchanger{
		checkErrs: []error{&graph.APIError{StatusCode: http.StatusForbidden, Message: "app disabled"}},
	}
	p := NewRefreshing(testAccount, testApp, ex, newFakeCache(), WithBackOff(noWait))

	_, err := p.Token(context.Background())
	var apiErr *graph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 1, ex.checks)
}

func TestRefreshing_NoCredential(t *testing.T) {
	p := NewRefreshing(config.AccountConfig{ID: "1784"}, config.MetaAppConfig{}, &fakeExchanger{}, nil, WithBackOff(noWait))

	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestStatic(t *testing.T) {
	token, err := Static("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = Static("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestRegistry(t *testing.T) {
	accounts := []config.AccountConfig{{ID: "b"}, {ID: "a"}}
	r := NewRegistry(accounts, testApp, &fakeExchanger{}, nil)
	assert.Equal(t, []string{"b", "a"}, r.Accounts())

	_, ok := r.Provider("a")
	assert.True(t, ok)
	_, ok = r.Provider("missing")
	assert.False(t, ok)

	static := NewStaticRegistry(map[string]string{"y": "t2", "x": "t1"})
	assert.Equal(t, []string{"x", "y"}, static.Accounts())
	p, ok := static.Provider("x")
	require.True(t, ok)
	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}
