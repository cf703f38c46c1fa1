package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"finax-server/src/auth"
	"finax-server/src/db/sqlite"
	"finax-server/src/models"
	"finax-server/src/notify"
)

type recordingNotifier struct {
	mu     sync.Mutex
	resets []notify.PasswordReset
	err    error
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, reset notify.PasswordReset) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.resets = append(n.resets, reset)
	return nil
}

func (n *recordingNotifier) last(t *testing.T) notify.PasswordReset {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.resets, "no reset was sent")
	return n.resets[len(n.resets)-1]
}

type testEnv struct {
	store    *sqlite.Store
	auth     *AuthService
	ledger   *LedgerService
	tokens   *auth.TokenManager
	notifier *recordingNotifier
	now      time.Time
}

func (e *testEnv) clock() time.Time { return e.now }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "finax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:    store,
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	env.tokens = auth.NewTokenManager("test-secret", time.Hour).WithClock(env.clock)
	authSvc, err := NewAuthService(store, env.tokens, auth.NewPasswordHasher(bcrypt.MinCost), env.notifier, time.Hour)
	require.NoError(t, err)
	env.auth = authSvc.WithClock(env.clock)
	env.ledger = NewLedgerService(store, store).WithClock(env.clock)
	return env
}

func (e *testEnv) register(t *testing.T, name, email, password string) *models.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), models.RegisterRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func (e *testEnv) category(t *testing.T, userID string, typ models.TransactionType) models.Category {
	t.Helper()
	categories, err := e.ledger.ListCategories(context.Background(), userID)
	require.NoError(t, err)
	for _, c := range categories {
		if c.Type == typ {
			return c
		}
	}
	t.Fatalf("no %s category for user %s", typ, userID)
	return models.Category{}
}

var errNotifier = errors.New("mailer down")

func strPtr(s string) *string { return &s }
