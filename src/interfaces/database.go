package interfaces

import (
	"time"

	"dkit-partners/src/models"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------
	// Users

	GetUser(id string) (*models.MUser, error)
	GetUserByEmail(email string) (*models.MUser, error)
	CreateUser(user models.MUser) error

	// -----------------------------------------------------------------------------
	// Projects

	GetProject(id string) (*models.MProject, error)
	GetProjectIDs() ([]string, error)
	CreateProject(project models.MProject) error
	UpdateProject(id string, updates models.MProjectUpdate) (*models.MProject, error)

	// -----------------------------------------------------------------------------
	// Metric points. InsertMetricPoints runs in one transaction and silently
	// skips rows whose (project_id, t) pair already exists, so concurrent
	// backfills converge to a single row per hour.

	InsertMetricPoints(points []models.MMetricPoint) error
	GetMetricPoints(projectID string, from, to *time.Time) ([]models.MMetricPoint, error)
	GetLatestMetricTime(projectID string) (time.Time, bool, error)

	// -----------------------------------------------------------------------------
	// Transactions (descending ts, capped at limit)

	InsertTransactions(txs []models.MTransaction) error
	GetTransactions(projectID string, limit int) ([]models.MTransaction, error)

	// -----------------------------------------------------------------------------
	// API keys

	GetApiKeys(projectID string) ([]models.MApiKey, error)
	CreateApiKey(key models.MApiKey) error
	DeleteApiKey(id, projectID string) (bool, error)

	// -----------------------------------------------------------------------------
	// Sessions

	CreateSession(session models.MSession) error
	GetSession(token string) (*models.MSession, error)
	DeleteSession(token string) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
