package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const (
	MemberCookie  = "member_id"
	GroupCookie   = "group_id"
	SessionCookie = "session"

	cookieMaxAge = 60 * 60 * 24 * 365
)

var ErrNoSession = errors.New("no session")

// Session identifies the member browsing the app.
type Session struct {
	MemberID uuid.UUID
	GroupID  uuid.UUID
}

// Manager writes and reads the session cookies. With a secret configured it
// also issues an HS256 token binding member_id to group_id.
type Manager struct {
	secret []byte
	secure bool
}

func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

func (m *Manager) Signed() bool {
	return len(m.secret) > 0
}

func (m *Manager) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Expires:  time.Now().Add(cookieMaxAge * time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) SetGroup(w http.ResponseWriter, groupID uuid.UUID) {
	http.SetCookie(w, m.cookie(GroupCookie, groupID.String()))
}

// SetMember sets member_id and group_id, plus the signed token when enabled.
func (m *Manager) SetMember(w http.ResponseWriter, memberID, groupID uuid.UUID) error {
	http.SetCookie(w, m.cookie(MemberCookie, memberID.String()))
	http.SetCookie(w, m.cookie(GroupCookie, groupID.String()))
	if !m.Signed() {
		return nil
	}
	token, err := m.Issue(Session{MemberID: memberID, GroupID: groupID})
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(SessionCookie, token))
	return nil
}

func (m *Manager) Issue(s Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"member_id": s.MemberID.String(),
		"group_id":  s.GroupID.String(),
		"exp":       time.Now().Add(cookieMaxAge * time.Second).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *Manager) verify(tokenString string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, errors.New("invalid token claims")
	}
	memberID, err := claimID(*claims, "member_id")
	if err != nil {
		return Session{}, err
	}
	groupID, err := claimID(*claims, "group_id")
	if err != nil {
		return Session{}, err
	}
	return Session{MemberID: memberID, GroupID: groupID}, nil
}

func claimID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, errors.New("missing " + key + " claim")
	}
	return uuid.Parse(raw)
}

// GroupID returns the group cookie alone; the join page needs nothing else.
func GroupID(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(GroupCookie)
	if err != nil || c.Value == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Read returns the session carried by the request cookies.
func (m *Manager) Read(r *http.Request) (Session, error) {
	groupID, ok := GroupID(r)
	if !ok {
		return Session{}, ErrNoSession
	}
	mc, err := r.Cookie(MemberCookie)
	if err != nil || mc.Value == "" {
		return Session{}, ErrNoSession
	}
	memberID, err := uuid.Parse(mc.Value)
	if err != nil {
		return Session{}, ErrNoSession
	}
	s := Session{MemberID: memberID, GroupID: groupID}

	if !m.Signed() {
		return s, nil
	}
	sc, err := r.Cookie(SessionCookie)
	if err != nil || sc.Value == "" {
		return Session{}, ErrNoSession
	}
	signed, err := m.verify(sc.Value)
	if err != nil || signed != s {
		return Session{}, ErrNoSession
	}
	return s, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
