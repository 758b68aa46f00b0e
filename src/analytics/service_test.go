package analytics

import (
	"math/rand"
	"testing"
	"time"

	"dkit-partners/src/logger"
	"dkit-partners/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// In-memory IDatabase mock
// -----------------------------------------------------------------------------

type mockDatabase struct {
	points      []models.MMetricPoint
	txs         []models.MTransaction
	lastTxLimit int
}

func (m *mockDatabase) Initialize() error { return nil }
func (m *mockDatabase) Close() error      { return nil }

func (m *mockDatabase) GetUser(id string) (*models.MUser, error)            { return nil, nil }
func (m *mockDatabase) GetUserByEmail(email string) (*models.MUser, error)  { return nil, nil }
func (m *mockDatabase) CreateUser(user models.MUser) error                  { return nil }
func (m *mockDatabase) GetProject(id string) (*models.MProject, error)      { return nil, nil }
func (m *mockDatabase) GetProjectIDs() ([]string, error)                    { return nil, nil }
func (m *mockDatabase) CreateProject(project models.MProject) error         { return nil }
func (m *mockDatabase) GetApiKeys(projectID string) ([]models.MApiKey, error) {
	return nil, nil
}
func (m *mockDatabase) CreateApiKey(key models.MApiKey) error { return nil }
func (m *mockDatabase) DeleteApiKey(id, projectID string) (bool, error) {
	return false, nil
}
func (m *mockDatabase) CreateSession(session models.MSession) error { return nil }
func (m *mockDatabase) GetSession(token string) (*models.MSession, error) {
	return nil, nil
}
func (m *mockDatabase) DeleteSession(token string) error { return nil }

func (m *mockDatabase) UpdateProject(id string, updates models.MProjectUpdate) (*models.MProject, error) {
	return nil, nil
}

func (m *mockDatabase) InsertMetricPoints(points []models.MMetricPoint) error {
	// Conflict-ignore on (project_id, t), matching the real stores
	for _, p := range points {
		exists := false
		for _, existing := range m.points {
			if existing.ProjectID == p.ProjectID && existing.T.Equal(p.T) {
				exists = true
				break
			}
		}
		if !exists {
			m.points = append(m.points, p)
		}
	}
	return nil
}

func (m *mockDatabase) GetMetricPoints(projectID string, from, to *time.Time) ([]models.MMetricPoint, error) {
	var out []models.MMetricPoint
	for _, p := range m.points {
		if p.ProjectID != projectID {
			continue
		}
		if from != nil && p.T.Before(*from) {
			continue
		}
		if to != nil && p.T.After(*to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockDatabase) GetLatestMetricTime(projectID string) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for _, p := range m.points {
		if p.ProjectID == projectID && (!found || p.T.After(latest)) {
			latest = p.T
			found = true
		}
	}
	return latest, found, nil
}

func (m *mockDatabase) InsertTransactions(txs []models.MTransaction) error {
	m.txs = append(m.txs, txs...)
	return nil
}

func (m *mockDatabase) GetTransactions(projectID string, limit int) ([]models.MTransaction, error) {
	m.lastTxLimit = limit
	var out []models.MTransaction
	for _, tx := range m.txs {
		if tx.ProjectID == projectID {
			out = append(out, tx)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Test helpers
// -----------------------------------------------------------------------------

var testNow = time.Date(2026, 3, 1, 12, 34, 56, 0, time.UTC)

func newTestService(db *mockDatabase) *Service {
	svc := NewService(
		db,
		NewSynthesizer(rand.New(rand.NewSource(1))),
		logger.NewLogger("ERROR", "test"),
		models.MAnalyticsConfig{
			BackfillDays:           30,
			BtcPriceUsd:            80000,
			DefaultTxLimit:         25,
			RefreshIntervalSeconds: 60,
		},
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

// -----------------------------------------------------------------------------
// Backfill
// -----------------------------------------------------------------------------

func TestEnsureBackfillSeedsFullHorizon(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	require.NoError(t, svc.EnsureBackfill("prj"))

	// 30 days of hourly points, both endpoints included
	assert.Len(t, db.points, 30*24+1)

	target := testNow.Truncate(time.Hour)
	horizon := target.AddDate(0, 0, -30)

	assert.True(t, db.points[0].T.Equal(horizon))
	assert.True(t, db.points[len(db.points)-1].T.Equal(target))

	// Contiguous, exactly one hour apart
	for i := 1; i < len(db.points); i++ {
		assert.Equal(t, time.Hour, db.points[i].T.Sub(db.points[i-1].T))
	}
}

func TestEnsureBackfillIdempotentWithinHour(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	require.NoError(t, svc.EnsureBackfill("prj"))
	first := len(db.points)

	require.NoError(t, svc.EnsureBackfill("prj"))
	require.NoError(t, svc.EnsureBackfill("prj"))

	assert.Equal(t, first, len(db.points))
}

func TestEnsureBackfillTopsUpFromLatest(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	target := testNow.Truncate(time.Hour)

	// Existing data ends three hours ago
	db.points = append(db.points, models.MMetricPoint{
		ID:        "existing",
		ProjectID: "prj",
		T:         target.Add(-3 * time.Hour),
		VolumeUsd: 12000,
		FeesUsd:   40,
		Trades:    30,
	})

	require.NoError(t, svc.EnsureBackfill("prj"))

	assert.Len(t, db.points, 4)
	assert.True(t, db.points[len(db.points)-1].T.Equal(target))

	// The pre-existing row survives untouched
	assert.Equal(t, "existing", db.points[0].ID)
	assert.Equal(t, 12000.0, db.points[0].VolumeUsd)
}

func TestEnsureBackfillIsolatedPerProject(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	require.NoError(t, svc.EnsureBackfill("alpha"))
	require.NoError(t, svc.EnsureBackfill("beta"))

	assert.Len(t, db.points, 2*(30*24+1))

	alpha, err := db.GetMetricPoints("alpha", nil, nil)
	require.NoError(t, err)
	assert.Len(t, alpha, 30*24+1)
}

// -----------------------------------------------------------------------------
// Range query
// -----------------------------------------------------------------------------

func TestQueryRangeInclusiveBounds(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	target := testNow.Truncate(time.Hour)
	from := target.Add(-time.Hour)
	to := target

	points, err := svc.QueryRange("prj", &from, &to)
	require.NoError(t, err)

	assert.Len(t, points, 2)
	assert.True(t, points[0].T.Equal(from))
	assert.True(t, points[1].T.Equal(to))
}

func TestQueryRangeUnboundedReturnsEverything(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	points, err := svc.QueryRange("prj", nil, nil)
	require.NoError(t, err)

	assert.Len(t, points, 30*24+1)
}

func TestQueryRangeOutsideHorizonIsEmpty(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	from := testNow.AddDate(-1, 0, 0)
	to := from.AddDate(0, 0, 1)

	points, err := svc.QueryRange("prj", &from, &to)
	require.NoError(t, err)
	assert.Empty(t, points)
}

// -----------------------------------------------------------------------------
// Report
// -----------------------------------------------------------------------------

func TestReportBackfillsBeforeReducing(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	report, err := svc.Report("prj", nil, nil)
	require.NoError(t, err)

	assert.Len(t, report.Series, 30*24+1)
	assert.Greater(t, report.Totals.VolumeUsd, 0.0)
	assert.Greater(t, report.Totals.BtcEquivalent, 0.0)
}

// -----------------------------------------------------------------------------
// Transactions
// -----------------------------------------------------------------------------

func TestTransactionsDefaultLimit(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	_, err := svc.Transactions("prj", 0)
	require.NoError(t, err)
	assert.Equal(t, 25, db.lastTxLimit)

	_, err = svc.Transactions("prj", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, db.lastTxLimit)
}

func TestTransactionsFormatsRows(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	db.txs = append(db.txs, models.MTransaction{
		ID:          "tx-1",
		ProjectID:   "prj",
		Ts:          time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
		Route:       "ETH→USDC",
		UsdNotional: 1500.555,
		FeeUsd:      4.5017,
		Status:      models.TxStatusCompleted,
	})

	views, err := svc.Transactions("prj", 10)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "2026-02-28T09:00:00Z", views[0].Ts)
	assert.Equal(t, 1500.56, views[0].UsdNotional)
	assert.Equal(t, 4.5, views[0].FeeUsd)
}

// -----------------------------------------------------------------------------
// Seeding
// -----------------------------------------------------------------------------

func TestSeedProject(t *testing.T) {
	db := &mockDatabase{}
	svc := newTestService(db)

	require.NoError(t, svc.SeedProject("prj"))

	assert.Len(t, db.points, 30*24+1)
	assert.GreaterOrEqual(t, len(db.txs), 8)
	assert.LessOrEqual(t, len(db.txs), 11)
}
