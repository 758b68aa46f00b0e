package auth

import (
	"time"

	"dkit-partners/src/helpers"
	"dkit-partners/src/interfaces"
	"dkit-partners/src/logger"
	"dkit-partners/src/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// -----------------------------------------------------------------------------
// Session management
//
// Sessions are opaque uuid tokens stored server side with an expiry. The
// token travels in an HTTP-only cookie; resolving it yields the trusted user
// (and through it the project scope) for every protected route.
// -----------------------------------------------------------------------------

// CookieName is the session cookie used by the API and the websocket upgrade.
const CookieName = "dkit_session"

type Manager struct {
	DB     interfaces.IDatabase
	Logger *logger.Logger

	ttl        time.Duration
	bcryptCost int
}

// -----------------------------------------------------------------------------

func NewManager(db interfaces.IDatabase, log *logger.Logger, cfg models.MAuthConfig) *Manager {
	return &Manager{
		DB:         db,
		Logger:     log,
		ttl:        time.Duration(cfg.SessionTTLDays) * 24 * time.Hour,
		bcryptCost: cfg.BcryptCost,
	}
}

// -----------------------------------------------------------------------------
// Passwords
// -----------------------------------------------------------------------------

func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// -----------------------------------------------------------------------------

func (m *Manager) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// -----------------------------------------------------------------------------
// Sessions
// -----------------------------------------------------------------------------

// OpenSession creates and persists a new session for the user.
func (m *Manager) OpenSession(userID string) (*models.MSession, error) {
	now := time.Now().UTC()
	session := models.MSession{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.DB.CreateSession(session); err != nil {
		return nil, helpers.NewDatabaseError("failed to create session", err)
	}

	return &session, nil
}

// -----------------------------------------------------------------------------

// Resolve maps a session token to its user. Missing or expired sessions
// yield an UnauthenticatedError; expired rows are removed on the way out.
func (m *Manager) Resolve(token string) (*models.MUser, error) {
	if token == "" {
		return nil, helpers.NewUnauthenticatedError("no session")
	}

	session, err := m.DB.GetSession(token)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to read session", err)
	}
	if session == nil {
		return nil, helpers.NewUnauthenticatedError("unknown session")
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		if err := m.DB.DeleteSession(token); err != nil {
			m.Logger.Warning("Failed to delete expired session: %v", err)
		}
		return nil, helpers.NewUnauthenticatedError("session expired")
	}

	user, err := m.DB.GetUser(session.UserID)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to read session user", err)
	}
	if user == nil {
		return nil, helpers.NewUnauthenticatedError("session user no longer exists")
	}

	return user, nil
}

// -----------------------------------------------------------------------------

// CloseSession removes the session; closing an unknown token is a no-op.
func (m *Manager) CloseSession(token string) error {
	if token == "" {
		return nil
	}
	if err := m.DB.DeleteSession(token); err != nil {
		return helpers.NewDatabaseError("failed to delete session", err)
	}
	return nil
}
