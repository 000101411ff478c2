package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"dresscutur/backend/internal/domain"
)

const sessionCookieName = "dresscutur_admin"

// Session identifies the signed-in back-office user.
type Session struct {
	AdminID  uuid.UUID
	Email    string
	IssuedAt time.Time
}

type SessionStore struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

// NewSessionStore signs cookies with hashKey and encrypts them with blockKey
// when it is non-nil.
func NewSessionStore(hashKey, blockKey []byte, maxAge time.Duration, secure bool) *SessionStore {
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &SessionStore{sc: sc, maxAge: maxAge, secure: secure}
}

func (s *SessionStore) Set(w http.ResponseWriter, admin domain.AdminUser) error {
	encoded, err := s.sc.Encode(sessionCookieName, Session{
		AdminID:  admin.ID,
		Email:    admin.Email,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		MaxAge:   int(s.maxAge.Seconds()),
	})
	return nil
}

func (s *SessionStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		MaxAge:   -1,
	})
}

func (s *SessionStore) Get(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := s.sc.Decode(sessionCookieName, c.Value, &sess); err != nil {
		return Session{}, false
	}
	if sess.AdminID == uuid.Nil {
		return Session{}, false
	}
	return sess, true
}

// RequireAdmin rejects requests without a valid session with 401.
func (s *SessionStore) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.Get(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(Session)
	return sess, ok
}
