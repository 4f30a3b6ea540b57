package credential

import (
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/graph"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	ErrNoCredential = errors.New("no access token configured")
)

// Provider 按次提供 bearer token，刷新与过期由实现自己负责
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static 固定 token，测试和不需要刷新的场景使用
type Static string

func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// Exchanger 校验与交换 token 的上游能力
type Exchanger interface {
	CheckToken(ctx context.Context, token, accountID string) (bool, error)
	ExchangeToken(ctx context.Context, appID, appSecret, token string) (*graph.Token, error)
}

// Cache 已验证 token 的缓存
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const (
	// checkedTokenTTL 校验通过的 token 在这段时间内不再重复校验
	checkedTokenTTL = 30 * time.Minute
	// expiryMargin 交换得到的 token 提前失效，避免临界点被上游拒绝
	expiryMargin = time.Hour
)

// Refreshing 先用缓存，其次校验当前 token，失效时用长期 token 交换新 token
type Refreshing struct {
	accountID  string
	app        config.MetaAppConfig
	exchanger  Exchanger
	cache      Cache
	newBackOff func() backoff.BackOff

	mu        sync.Mutex
	current   string
	longLived string
}

type Option func(*Refreshing)

// WithBackOff 替换重试策略
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(p *Refreshing) {
		p.newBackOff = fn
	}
}

func NewRefreshing(acc config.AccountConfig, app config.MetaAppConfig, exchanger Exchanger, cache Cache, opts ...Option) *Refreshing {
	p := &Refreshing{
		accountID: acc.ID,
		app:       app,
		exchanger: exchanger,
		cache:     cache,
		current:   acc.AccessToken,
		longLived: acc.LongLivedToken,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 10 * time.Second
			return backoff.WithMaxRetries(b, 3)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Refreshing) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := consts.MetaAccessTokenKey + p.accountID
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, key)
		if err != nil {
			log.WarnContext(ctx, "read cached access token failed", "account_id", p.accountID, "err", err)
		} else if cached != "" {
			return cached, nil
		}
	}

	if p.current != "" {
		var valid bool
		err := p.retry(ctx, func() error {
			var err error
			valid, err = p.exchanger.CheckToken(ctx, p.current, p.accountID)
			return err
		})
		if err != nil {
			return "", err
		}
		if valid {
			p.store(ctx, key, p.current, checkedTokenTTL)
			return p.current, nil
		}
		log.InfoContext(ctx, "access token rejected, exchanging long-lived token", "account_id", p.accountID)
	}

	source := p.longLived
	if source == "" {
		source = p.current
	}
	if source == "" || p.app.AppID == "" || p.app.AppSecret == "" {
		return "", fmt.Errorf("account %s: %w", p.accountID, ErrNoCredential)
	}

	var token *graph.Token
	err := p.retry(ctx, func() error {
		var err error
		token, err = p.exchanger.ExchangeToken(ctx, p.app.AppID, p.app.AppSecret, source)
		return err
	})
	if err != nil {
		return "", err
	}

	p.current = token.AccessToken
	ttl := checkedTokenTTL
	if token.ExpiresIn > 0 {
		if lifetime := time.Duration(token.ExpiresIn)*time.Second - expiryMargin; lifetime > 0 {
			ttl = lifetime
		}
	}
	p.store(ctx, key, p.current, ttl)
	log.InfoContext(ctx, "access token refreshed", "account_id", p.accountID, "expires_in", token.ExpiresIn)
	return p.current, nil
}

func (p *Refreshing) store(ctx context.Context, key, token string, ttl time.Duration) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, key, token, ttl); err != nil {
		log.WarnContext(ctx, "cache access token failed", "account_id", p.accountID, "err", err)
	}
}

// retry 只重试上游 5xx、429 和网络错误，其余错误直接返回
func (p *Refreshing) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		var apiErr *graph.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError && apiErr.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		if apiErr != nil && apiErr.StatusCode == http.StatusServiceUnavailable && apiErr.Message == graph.CircuitOpenMessage {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(p.newBackOff(), ctx))
}

// Registry 账号到凭据的映射
type Registry struct {
	order     []string
	providers map[string]Provider
}

func NewRegistry(accounts []config.AccountConfig, app config.MetaAppConfig, exchanger Exchanger, cache Cache) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(accounts))}
	for _, acc := range accounts {
		r.order = append(r.order, acc.ID)
		r.providers[acc.ID] = NewRefreshing(acc, app, exchanger, cache)
	}
	return r
}

// NewStaticRegistry 直接使用给定 token
func NewStaticRegistry(tokens map[string]string) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(tokens))}
	for id, token := range tokens {
		r.order = append(r.order, id)
		r.providers[id] = Static(token)
	}
	sort.Strings(r.order)
	return r
}

// Provider 返回账号对应的凭据，未配置的账号返回 false
func (r *Registry) Provider(accountID string) (Provider, bool) {
	p, ok := r.providers[accountID]
	return p, ok
}

// Accounts 已配置的账号，保持配置顺序
func (r *Registry) Accounts() []string {
	return append([]string(nil), r.order...)
}
