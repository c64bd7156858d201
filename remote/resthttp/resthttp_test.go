package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// gateway fakes the REST command endpoint and records received commands.
type gateway struct {
	t        *testing.T
	commands [][]any
	data     map[string]string
	counters map[string]int64
}

func newGateway(t *testing.T) *gateway {
	return &gateway{t: t, data: map[string]string{}, counters: map[string]int64{}}
}

func (g *gateway) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			g.t.Errorf("bad auth header: %q", got)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			g.t.Errorf("bad method: %s", r.Method)
		}

		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || len(cmd) == 0 {
			http.Error(w, `{"error":"bad command"}`, http.StatusBadRequest)
			return
		}
		g.commands = append(g.commands, cmd)

		var result any
		switch cmd[0] {
		case "GET":
			if v, ok := g.data[cmd[1].(string)]; ok {
				result = v
			}
		case "SET":
			g.data[cmd[1].(string)] = cmd[2].(string)
			result = "OK"
		case "DEL":
			delete(g.data, cmd[1].(string))
			result = 1
		case "INCR":
			g.counters[cmd[1].(string)]++
			result = g.counters[cmd[1].(string)]
		default:
			http.Error(w, `{"error":"unknown command"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}
}

func newTestClient(t *testing.T) (*Client, *gateway) {
	t.Helper()
	g := newGateway(t)
	srv := httptest.NewServer(g.handler())
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, g
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{URL: "http://x"}); err == nil {
		t.Fatal("missing token accepted")
	}
	if _, err := New(Config{Token: "t"}); err == nil {
		t.Fatal("missing URL accepted")
	}
}

func TestFromEnvAbsentMeansDisabled(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")
	if _, ok := FromEnv(); ok {
		t.Fatal("FromEnv without config should report ok=false")
	}

	t.Setenv(EnvURL, "http://example")
	t.Setenv(EnvToken, "tok")
	if _, ok := FromEnv(); !ok {
		t.Fatal("FromEnv with config should succeed")
	}
}

func TestGetMissAndHit(t *testing.T) {
	ctx := context.Background()
	c, g := newTestClient(t)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}

	g.data["k"] = "hello"
	v, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestSetSendsExpirySeconds(t *testing.T) {
	ctx := context.Background()
	c, g := newTestClient(t)

	if err := c.Set(ctx, "k", "v", 90*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := []any{"SET", "k", "v", "EX", float64(90)} // JSON numbers decode as float64
	if fmt.Sprint(g.commands[0]) != fmt.Sprint(want) {
		t.Fatalf("command = %v, want %v", g.commands[0], want)
	}
}

func TestSetRoundsSubSecondTTLUp(t *testing.T) {
	ctx := context.Background()
	c, g := newTestClient(t)

	if err := c.Set(ctx, "k", "v", 200*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := g.commands[0][4].(float64); got != 1 {
		t.Fatalf("sub-second TTL sent EX=%v, want 1", got)
	}
}

func TestIncrReturnsCounter(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "ver")
		if err != nil || n != want {
			t.Fatalf("Incr: n=%d err=%v want %d", n, err, want)
		}
	}
}

func TestDel(t *testing.T) {
	ctx := context.Background()
	c, g := newTestClient(t)
	g.data["k"] = "v"

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok := g.data["k"]; ok {
		t.Fatal("key still present after DEL")
	}
}

func TestNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("500 response should surface as an error")
	}
}

func TestMalformedResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("unparseable response should surface as an error")
	}
}

func TestUnreachableGatewayIsError(t *testing.T) {
	c, err := New(Config{URL: "http://127.0.0.1:1", Token: "tok"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("network failure should surface as an error")
	}
}
