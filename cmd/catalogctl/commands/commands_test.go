package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"
	"shop-catalog/internal/notify"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const testSecret = "catalogctl-test-secret"

// lockedBuffer lets a running command write while the test polls its output
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// reset cobra + global flag state between tests
func resetCLI() {
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetContext(context.Background())
	verbose = false
	jsonOutput = false
	tokenUserID = 0
	tokenRole = string(domain.RoleUser)
	tokenTTL = time.Hour
}

// runCLI executes catalogctl with args and returns what it printed
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestToken_SignsTokenAcceptedByAuthMiddleware(t *testing.T) {
	defer resetCLI()
	t.Setenv("JWT_SECRET", testSecret)

	out, _, err := runCLI(t, "token", "--user", "42", "--role", "manager", "--ttl", "5m")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	token := strings.TrimSpace(out)
	if token == "" {
		t.Fatal("token printed nothing")
	}

	var gotID int64
	var gotRole domain.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = middleware.GetUserID(r.Context())
		gotRole, _ = middleware.GetUserRole(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.AuthMiddleware(testSecret, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("middleware rejected signed token: %d %s", w.Code, w.Body.String())
	}
	if gotID != 42 || gotRole != domain.RoleManager {
		t.Fatalf("unexpected claims: user=%d role=%q", gotID, gotRole)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	middleware.AuthMiddleware("another-secret", zap.NewNop())(next).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("token verified with the wrong secret: %d", w.Code)
	}
}

func TestMigrate_WithoutSubcommandPrintsHelp(t *testing.T) {
	defer resetCLI()

	out, _, err := runCLI(t, "migrate")
	if err != nil {
		t.Fatalf("migrate without subcommand failed: %v", err)
	}
	for _, sub := range []string{"up", "down", "status"} {
		if !strings.Contains(out, sub) {
			t.Fatalf("help does not list %q:\n%s", sub, out)
		}
	}
}

func startWatch(t *testing.T, args ...string) (*miniredis.Miniredis, *lockedBuffer, context.CancelFunc, <-chan error) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
	t.Setenv("PURCHASE_CHANNEL", "catalog.purchases")

	out := &lockedBuffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append([]string{"watch-purchases"}, args...))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for mr.PubSubNumSub("catalog.purchases")["catalog.purchases"] == 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("watcher never subscribed: %s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	return mr, out, cancel, done
}

func publishPurchase(t *testing.T, mr *miniredis.Miniredis, event notify.PurchaseEvent) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	publisher := notify.NewRedisPublisher(client, "catalog.purchases", zap.NewNop())
	if err := publisher.PublishPurchase(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}

func waitForOutput(t *testing.T, out *lockedBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("output never contained %q:\n%s", want, out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func stopWatch(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch-purchases returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch-purchases did not stop after cancel")
	}
}

func TestWatchPurchases_PrintsPublishedEvents(t *testing.T) {
	defer resetCLI()
	mr, out, cancel, done := startWatch(t)

	publishPurchase(t, mr, notify.NewPurchaseEvent(7, 3, 2, 8))
	waitForOutput(t, out, "product=7 user=3 count=2 remaining=8")

	mr.Publish("catalog.purchases", "not json")
	publishPurchase(t, mr, notify.NewPurchaseEvent(8, 3, 1, 0))
	waitForOutput(t, out, "product=8 user=3 count=1 remaining=0")

	stopWatch(t, cancel, done)
}

func TestWatchPurchases_JSONOutput(t *testing.T) {
	defer resetCLI()
	mr, out, cancel, done := startWatch(t, "--json")

	event := notify.NewPurchaseEvent(11, 5, 4, 6)
	publishPurchase(t, mr, event)
	waitForOutput(t, out, event.ID)
	stopWatch(t, cancel, done)

	var got notify.PurchaseEvent
	line := strings.TrimSpace(out.String())
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid json output %q: %v", line, err)
	}
	if got.ID != event.ID || got.ProductID != 11 || got.Remaining != 6 {
		t.Fatalf("unexpected event %+v", got)
	}
}
