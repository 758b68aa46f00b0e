package auth

import (
	"path/filepath"
	"testing"
	"time"

	"dkit-partners/src/helpers"
	"dkit-partners/src/interfaces"
	"dkit-partners/src/logger"
	"dkit-partners/src/models"
	"dkit-partners/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Test helpers
// -----------------------------------------------------------------------------

func newTestManager(t *testing.T) (*Manager, interfaces.IDatabase) {
	t.Helper()

	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "auth_test.db"),
		},
	}

	db, err := storage.NewSQLiteDB(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	// Minimal cost keeps the bcrypt tests fast
	manager := NewManager(db, logger.NewLogger("ERROR", "test"), models.MAuthConfig{
		SessionTTLDays: 7,
		BcryptCost:     4,
	})
	return manager, db
}

// -----------------------------------------------------------------------------
// Passwords
// -----------------------------------------------------------------------------

func TestPasswordHashing(t *testing.T) {
	m, _ := newTestManager(t)

	hash, err := m.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, m.CheckPassword(hash, "secret123"))
	assert.False(t, m.CheckPassword(hash, "wrong"))
	assert.False(t, m.CheckPassword("not-a-hash", "secret123"))
}

// -----------------------------------------------------------------------------
// Sessions
// -----------------------------------------------------------------------------

func TestOpenAndResolveSession(t *testing.T) {
	m, db := newTestManager(t)

	require.NoError(t, db.CreateUser(models.MUser{
		ID:        "u-1",
		Name:      "Partner",
		Email:     "partner@example.com",
		Password:  "hash",
		Role:      "PARTNER",
		ProjectID: "p-1",
		CreatedAt: time.Now().UTC(),
	}))

	session, err := m.OpenSession("u-1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now().UTC().Add(6*24*time.Hour)))

	user, err := m.Resolve(session.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Resolve("not-a-session")
	assert.True(t, helpers.IsUnauthenticated(err))

	_, err = m.Resolve("")
	assert.True(t, helpers.IsUnauthenticated(err))
}

func TestResolveExpiredSessionIsRemoved(t *testing.T) {
	m, db := newTestManager(t)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.CreateSession(models.MSession{
		Token:     "expired-tok",
		UserID:    "u-1",
		CreatedAt: past.Add(-24 * time.Hour),
		ExpiresAt: past,
	}))

	_, err := m.Resolve("expired-tok")
	assert.True(t, helpers.IsUnauthenticated(err))

	// The expired row is gone
	session, err := db.GetSession("expired-tok")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCloseSession(t *testing.T) {
	m, db := newTestManager(t)

	require.NoError(t, db.CreateUser(models.MUser{
		ID: "u-1", Name: "P", Email: "p@example.com", Password: "h",
		Role: "PARTNER", ProjectID: "p-1", CreatedAt: time.Now().UTC(),
	}))

	session, err := m.OpenSession("u-1")
	require.NoError(t, err)

	require.NoError(t, m.CloseSession(session.Token))
	_, err = m.Resolve(session.Token)
	assert.True(t, helpers.IsUnauthenticated(err))

	// Unknown and empty tokens are no-ops
	assert.NoError(t, m.CloseSession("never-existed"))
	assert.NoError(t, m.CloseSession(""))
}
