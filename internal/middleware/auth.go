package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const sessionName = "app-session"

const (
	studentIDKey = "student_id"
	tokenKey     = "token"
)

// Identity is the (student id, session token) pair a browser holds between requests.
type Identity struct {
	StudentID string
	Token     string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore signs cookies with key. An empty key gets a random one, which
// invalidates every cookie on restart.
func NewSessionStore(key string, secure bool) (*SessionStore, error) {
	hashKey := []byte(key)
	if key == "" {
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			return nil, errors.New("generate session key")
		}
	}

	store := sessions.NewCookieStore(hashKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}, nil
}

func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, id Identity) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[studentIDKey] = id.StudentID
	session.Values[tokenKey] = id.Token
	return session.Save(r, w)
}

// Load returns the identity held by the request cookie. A tampered or stale cookie
// reads as no identity.
func (s *SessionStore) Load(r *http.Request) (Identity, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return Identity{}, false
	}
	studentID, ok := session.Values[studentIDKey].(string)
	if !ok || studentID == "" {
		return Identity{}, false
	}
	token, ok := session.Values[tokenKey].(string)
	if !ok || token == "" {
		return Identity{}, false
	}
	return Identity{StudentID: studentID, Token: token}, true
}

func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// RequireAuth rejects requests without a session cookie and puts the identity in the
// request context. Whether the token is still current is checked by the handlers.
func (s *SessionStore) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.Load(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not logged in"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
