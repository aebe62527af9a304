// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package httpd_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/donelist/donelist/internal/authn"
	"github.com/donelist/donelist/internal/httpd"
	"github.com/donelist/donelist/internal/todo"
	"github.com/donelist/donelist/internal/user"
	"github.com/donelist/donelist/pkg/errutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testCookieName = "donelist_session"

// memUsers is an in-memory user.Repository. Setting err makes every
// method fail with it.
type memUsers struct {
	mu   sync.Mutex
	seq  int64
	rows []*user.User
	err  error
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	u.ID = m.seq
	m.rows = append(m.rows, u)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.rows {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByAPIToken(_ context.Context, token string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.rows {
		if u.APIToken == token {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.rows {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) SetResetToken(_ context.Context, email, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			t := token
			u.ResetPasswordToken = &t
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memUsers) ExistsByResetToken(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.rows {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ResetPassword(_ context.Context, token, encryptedPassword string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, u := range m.rows {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
			u.EncryptedPassword = encryptedPassword
			u.ResetPasswordToken = nil
			return 1, nil
		}
	}
	return 0, nil
}

// memTodos is an in-memory todo.Repository with the same ownership
// scoping as the SQL implementation.
type memTodos struct {
	mu   sync.Mutex
	seq  int64
	rows []*todo.Todo
	err  error
}

func (m *memTodos) Create(_ context.Context, userID int64, description string) (*todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	now := time.Now()
	t := &todo.Todo{ID: m.seq, UserID: userID, Description: description, CreatedAt: now, UpdatedAt: now}
	m.rows = append(m.rows, t)
	return t, nil
}

func (m *memTodos) GetByOwner(_ context.Context, id, userID int64) (*todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.rows {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, todo.ErrNotFound
}

func (m *memTodos) DeleteByOwner(_ context.Context, id, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for i, t := range m.rows {
		if t.ID == id && t.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memTodos) SetCompletion(_ context.Context, id, userID int64, completedAt *time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, t := range m.rows {
		if t.ID == id && t.UserID == userID {
			t.CompletedAt = completedAt
			t.UpdatedAt = time.Now()
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memTodos) ListByOwner(_ context.Context, userID int64, completed bool) ([]*todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*todo.Todo
	for _, t := range m.rows {
		if t.UserID == userID && t.Completed() == completed {
			out = append(out, t)
		}
	}
	return out, nil
}

// memSessions is an in-memory authn.SessionRepository keyed by token
// hash.
type memSessions struct {
	mu     sync.Mutex
	byHash map[string]*authn.Session
	err    error
}

func newMemSessions() *memSessions {
	return &memSessions{byHash: make(map[string]*authn.Session)}
}

func (m *memSessions) Create(_ context.Context, s *authn.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byHash[s.TokenHash] = s
	return nil
}

func (m *memSessions) GetByTokenHash(_ context.Context, tokenHash string) (*authn.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.byHash[tokenHash]
	if !ok {
		return nil, authn.ErrNoSession
	}
	return s, nil
}

func (m *memSessions) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, s := range m.byHash {
		if s.ID == id {
			s.LastSeenAt = lastSeen
			return nil
		}
	}
	return authn.ErrNoSession
}

func (m *memSessions) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byHash[tokenHash]; !ok {
		return authn.ErrNoSession
	}
	delete(m.byHash, tokenHash)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for hash, s := range m.byHash {
		if s.IsExpired() {
			delete(m.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHash)
}

// plainHasher hashes with a reversible prefix so tests can seed
// passwords without running argon2.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain:"+password, nil
}

// recordMailer captures deliveries synchronously.
type recordMailer struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (m *recordMailer) DeliverResetInstructions(email, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, email)
	m.tokens = append(m.tokens, token)
}

func (m *recordMailer) deliveries() ([]string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.emails...), append([]string(nil), m.tokens...)
}

// env bundles a fully wired Server over in-memory dependencies.
type env struct {
	handler  http.Handler
	users    *memUsers
	todos    *memTodos
	sessions *memSessions
	mailer   *recordMailer
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	users := &memUsers{}
	todos := &memTodos{}
	sessions := newMemSessions()
	mailer := &recordMailer{}
	hasher := plainHasher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	serializer, err := authn.NewSerializer(sessions, users)
	require.NoError(t, err)

	registry := authn.NewRegistry()
	require.NoError(t, registry.Register(&authn.Scope{
		Name:       authn.ScopeUser,
		Store:      true,
		Fallback:   authn.FallbackWebSignIn,
		Strategies: []authn.Strategy{authn.PasswordStrategy{Users: users, Hasher: hasher}},
	}))
	require.NoError(t, registry.Register(&authn.Scope{
		Name:       authn.ScopeAPI,
		Fallback:   authn.FallbackAPIUnauthorized,
		Strategies: []authn.Strategy{authn.APITokenStrategy{Users: users}},
	}))

	manager, err := authn.NewManager(registry, serializer, logger)
	require.NoError(t, err)

	srv, err := httpd.NewServer(
		httpd.Options{Addr: "127.0.0.1:0", SessionCookie: testCookieName},
		manager, todos, users, hasher, mailer, logger,
	)
	require.NoError(t, err)

	return &env{
		handler:  srv.Handler(),
		users:    users,
		todos:    todos,
		sessions: sessions,
		mailer:   mailer,
	}
}

func (e *env) seedUser(t *testing.T, email, password, apiToken string) *user.User {
	t.Helper()
	u := &user.User{Email: email, EncryptedPassword: "plain:" + password, APIToken: apiToken}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// do performs a request against the server handler. A non-nil form is
// sent url-encoded; muts adjust the request before dispatch.
func (e *env) do(method, path string, form url.Values, muts ...func(*http.Request)) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, mut := range muts {
		mut(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func withCookie(value string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: value})
	}
}

func withAPIToken(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(authn.AccessTokenHeader, token)
	}
}

// signIn logs the user in and returns the session cookie value.
func (e *env) signIn(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(http.MethodPost, "/session", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func noticeLocation(path, notice string) string {
	return path + "?notice=" + url.QueryEscape(notice)
}

func TestNewServer_RequiresManager(t *testing.T) {
	_, err := httpd.NewServer(httpd.Options{}, nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "HTTPD_INVALID")
}

func TestServer_Handler(t *testing.T) {
	e := newTestEnv(t)
	assert.NotNil(t, e.handler)
}
