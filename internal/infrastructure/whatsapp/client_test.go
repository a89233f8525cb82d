package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/infrastructure/config"
)

type fakeGateway struct {
	t          *testing.T
	signins    atomic.Int32
	sends      atomic.Int32
	rejectNext atomic.Bool
	sendStatus int
	lastBody   map[string]any
	lastHeader http.Header
	mu         sync.Mutex
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(signinPath, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(g.t, ok)
		assert.Equal(g.t, "id", user)
		assert.Equal(g.t, "secret", pass)
		n := g.signins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-" + string(rune('0'+n)), "exires_in": 3600})
	})
	send := func(w http.ResponseWriter, r *http.Request) {
		g.sends.Add(1)
		if g.rejectNext.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		g.mu.Lock()
		g.lastBody = body
		g.lastHeader = r.Header.Clone()
		g.mu.Unlock()
		if g.sendStatus != 0 {
			w.WriteHeader(g.sendStatus)
			_, _ = w.Write([]byte(`{"error":"invalid number"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
	mux.HandleFunc(sendPath, send)
	mux.HandleFunc(sendMediaPath, send)
	return mux
}

func newTestClient(t *testing.T, g *fakeGateway, now func() time.Time) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(g.handler())
	c := NewClient(config.WhatsAppConfig{
		BaseURL:      srv.URL + "/",
		SessionToken: "session",
		ClientID:     "id",
		ClientSecret: "secret",
		DefaultTo:    "5511999990000",
	}, WithHTTPClient(srv.Client()), WithClock(now))
	return c, srv.Close
}

func TestClient_SendText(t *testing.T) {
	g := &fakeGateway{t: t}
	c, done := newTestClient(t, g, time.Now)
	defer done()

	require.NoError(t, c.SendText(context.Background(), nil, "hello"))
	require.NoError(t, c.SendText(context.Background(), []string{" 5511888880000 "}, "again"))

	assert.EqualValues(t, 1, g.signins.Load(), "token is cached between sends")
	assert.EqualValues(t, 2, g.sends.Load())
	assert.Equal(t, []any{"5511888880000"}, g.lastBody["to"])
	assert.Equal(t, "again", g.lastBody["body"])
	assert.Equal(t, "Bearer tok-1", g.lastHeader.Get("Authorization"))
	assert.Equal(t, "session", g.lastHeader.Get("session_token"))
	assert.Equal(t, "wi_motos/1.0", g.lastHeader.Get("User-Agent"))
}

func TestClient_RetriesOnceOn401(t *testing.T) {
	g := &fakeGateway{t: t}
	c, done := newTestClient(t, g, time.Now)
	defer done()

	g.rejectNext.Store(true)
	require.NoError(t, c.SendText(context.Background(), nil, "hello"))
	assert.EqualValues(t, 2, g.signins.Load())
	assert.EqualValues(t, 2, g.sends.Load())
	assert.Equal(t, "Bearer tok-2", g.lastHeader.Get("Authorization"))
}

func TestClient_DeliveryError(t *testing.T) {
	g := &fakeGateway{t: t, sendStatus: http.StatusBadRequest}
	c, done := newTestClient(t, g, time.Now)
	defer done()

	err := c.SendText(context.Background(), nil, "hello")
	require.Error(t, err)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadRequest, de.Status)
	assert.Contains(t, de.Body, "invalid number")
	assert.ErrorIs(t, err, shared.ErrDeliveryFailure)
}

func TestClient_SendMedia(t *testing.T) {
	g := &fakeGateway{t: t}
	c, done := newTestClient(t, g, time.Now)
	defer done()

	require.NoError(t, c.SendMedia(context.Background(), nil, "Honda CG", "R$ 12000.00", "data:image/jpeg;base64,AAAA"))
	assert.Equal(t, "image", g.lastBody["type"])
	assert.Equal(t, "Honda CG", g.lastBody["title"])
	assert.Equal(t, "data:image/jpeg;base64,AAAA", g.lastBody["media"])
	assert.Equal(t, []any{"5511999990000"}, g.lastBody["to"])
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{DefaultTo: "5511999990000"})
	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.SendText(context.Background(), nil, "x"), ErrNotConfigured)

	c = NewClient(config.WhatsAppConfig{BaseURL: "http://example", ClientID: "a", ClientSecret: "b"})
	assert.ErrorIs(t, c.SendText(context.Background(), nil, "x"), ErrNotConfigured, "no destination")
}

func TestTokenCache(t *testing.T) {
	now := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var calls atomic.Int32
	ttl := 30 * time.Second
	cache := NewTokenCache(func(ctx context.Context) (string, time.Duration, error) {
		calls.Add(1)
		return "tok", ttl, nil
	}, clock)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	t.Run("short lifetimes are floored at 60s", func(t *testing.T) {
		now = now.Add(59 * time.Second)
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 1, calls.Load())
		now = now.Add(time.Second)
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("lifetime minus skew", func(t *testing.T) {
		ttl = 3600 * time.Second
		cache.Invalidate()
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 3, calls.Load())
		now = now.Add(3539 * time.Second)
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 3, calls.Load())
		now = now.Add(time.Second)
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 4, calls.Load())
	})

	t.Run("missing lifetime defaults to one day", func(t *testing.T) {
		ttl = 0
		cache.Invalidate()
		_, _ = cache.Get(context.Background())
		now = now.Add(23 * time.Hour)
		_, _ = cache.Get(context.Background())
		assert.EqualValues(t, 5, calls.Load())
	})
}

func TestTokenCache_ConcurrentRefreshSharesSignin(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	cache := NewTokenCache(func(ctx context.Context) (string, time.Duration, error) {
		calls.Add(1)
		<-release
		return "tok", time.Hour, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok", tok)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
}
