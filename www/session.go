package www

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "partsdesk_session"

type sessionInfo struct {
	ID       string
	Username string
	Role     string
}

type ctxKeySession struct{}

func withSession(ctx context.Context, info sessionInfo) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, info)
}

func sessionFrom(ctx context.Context) sessionInfo {
	info, _ := ctx.Value(ctxKeySession{}).(sessionInfo)
	return info
}

type sessionStore struct {
	store   *sessions.CookieStore
	timeout time.Duration
}

func newSessionStore(secret string, timeout time.Duration) *sessionStore {
	var key []byte
	if secret != "" {
		key, _ = base64.StdEncoding.DecodeString(secret)
	}
	if len(key) < 32 {
		key = make([]byte, 32)
		rand.Read(key)
	}
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(timeout.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &sessionStore{store: cs, timeout: timeout}
}

func (s *sessionStore) get(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

// login issues a fresh session with a new id and activity clock.
func (s *sessionStore) login(w http.ResponseWriter, r *http.Request, username, role string) sessionInfo {
	sess := s.get(r)
	info := sessionInfo{ID: uuid.NewString(), Username: username, Role: role}
	sess.Values["sid"] = info.ID
	sess.Values["username"] = info.Username
	sess.Values["role"] = info.Role
	sess.Values["last_active"] = time.Now().Unix()
	sess.Save(r, w)
	return info
}

// touch validates the session against the inactivity timeout and, when
// still live, resets the activity clock. remaining is the time left
// before the touch, so a caller can warn about near-expiry.
func (s *sessionStore) touch(w http.ResponseWriter, r *http.Request) (info sessionInfo, remaining time.Duration, ok bool) {
	sess := s.get(r)
	username, uok := sess.Values["username"].(string)
	if !uok || username == "" {
		return sessionInfo{}, 0, false
	}
	lastActive, lok := sess.Values["last_active"].(int64)
	if !lok {
		return sessionInfo{}, 0, false
	}

	idle := time.Since(time.Unix(lastActive, 0))
	if idle > s.timeout {
		s.clear(w, r)
		return sessionInfo{}, 0, false
	}

	info.Username = username
	info.Role, _ = sess.Values["role"].(string)
	info.ID, _ = sess.Values["sid"].(string)

	sess.Values["last_active"] = time.Now().Unix()
	sess.Save(r, w)
	return info, s.timeout - idle, true
}

func (s *sessionStore) clear(w http.ResponseWriter, r *http.Request) {
	sess := s.get(r)
	delete(sess.Values, "sid")
	delete(sess.Values, "username")
	delete(sess.Values, "role")
	delete(sess.Values, "last_active")
	sess.Options.MaxAge = -1
	sess.Save(r, w)
}
