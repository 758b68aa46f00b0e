package storage

import (
	"database/sql"
	"fmt"
	"time"

	"dkit-partners/src/logger"
	"dkit-partners/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// Durable account data: created once, never dropped on restart.
	// SQLite types: INTEGER for int64/unix time, REAL for float64, TEXT for string
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			project_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT,
			logo_url TEXT,
			dapp_url TEXT,
			btc_address TEXT,
			thor_name TEXT,
			maya_name TEXT,
			chainflip_address TEXT,
			setup_completed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS metric_points (
			id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			t INTEGER NOT NULL,
			volume_usd REAL NOT NULL,
			fees_usd REAL NOT NULL,
			trades INTEGER NOT NULL,
			PRIMARY KEY (project_id, t)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			route TEXT NOT NULL,
			asset_from TEXT NOT NULL,
			asset_to TEXT NOT NULL,
			amount_in TEXT NOT NULL,
			amount_out TEXT NOT NULL,
			usd_notional REAL NOT NULL,
			fee_usd REAL NOT NULL,
			status TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			chain TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_project_ts ON transactions (project_id, ts);`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			key TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetUser(id string) (*models.MUser, error) {
	row := d.DB.QueryRow(`
		SELECT id, name, email, password, role, project_id, created_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetUserByEmail(email string) (*models.MUser, error) {
	row := d.DB.QueryRow(`
		SELECT id, name, email, password, role, project_id, created_at
		FROM users WHERE email = ?
	`, email)
	return scanUser(row)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CreateUser(user models.MUser) error {
	_, err := d.DB.Exec(`
		INSERT INTO users (id, name, email, password, role, project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.Password, user.Role, user.ProjectID, user.CreatedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetProject(id string) (*models.MProject, error) {
	row := d.DB.QueryRow(`
		SELECT id, name, logo_url, dapp_url, btc_address, thor_name, maya_name, chainflip_address, setup_completed
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetProjectIDs() ([]string, error) {
	rows, err := d.DB.Query(`SELECT id FROM projects`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CreateProject(project models.MProject) error {
	_, err := d.DB.Exec(`
		INSERT INTO projects (id, name, logo_url, dapp_url, btc_address, thor_name, maya_name, chainflip_address, setup_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.Name, project.LogoUrl, project.DappUrl, project.BtcAddress,
		project.ThorName, project.MayaName, project.ChainflipAddress, boolToInt(project.SetupCompleted))
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) UpdateProject(id string, updates models.MProjectUpdate) (*models.MProject, error) {
	project, err := d.GetProject(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}

	applyProjectUpdate(project, updates)

	_, err = d.DB.Exec(`
		UPDATE projects
		SET name = ?, logo_url = ?, dapp_url = ?, btc_address = ?, thor_name = ?, maya_name = ?, chainflip_address = ?, setup_completed = ?
		WHERE id = ?
	`, project.Name, project.LogoUrl, project.DappUrl, project.BtcAddress,
		project.ThorName, project.MayaName, project.ChainflipAddress, boolToInt(project.SetupCompleted), id)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// -----------------------------------------------------------------------------
// Metric points
// -----------------------------------------------------------------------------

func (d *SQLiteDB) InsertMetricPoints(points []models.MMetricPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Conflict-ignore on (project_id, t): concurrent backfills racing through
	// the same hour range converge to one row per hour.
	stmt, err := tx.Prepare(`
		INSERT INTO metric_points (id, project_id, t, volume_usd, fees_usd, trades)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, t) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(p.ID, p.ProjectID, p.T.Unix(), p.VolumeUsd, p.FeesUsd, p.Trades)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetMetricPoints(projectID string, from, to *time.Time) ([]models.MMetricPoint, error) {
	query := `
		SELECT id, project_id, t, volume_usd, fees_usd, trades
		FROM metric_points
		WHERE project_id = ?
	`
	args := []interface{}{projectID}

	if from != nil {
		query += " AND t >= ?"
		args = append(args, from.Unix())
	}
	if to != nil {
		query += " AND t <= ?"
		args = append(args, to.Unix())
	}
	query += " ORDER BY t ASC"

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMetricPoints(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetLatestMetricTime(projectID string) (time.Time, bool, error) {
	var unix sql.NullInt64
	err := d.DB.QueryRow(`
		SELECT MAX(t) FROM metric_points WHERE project_id = ?
	`, projectID).Scan(&unix)
	if err != nil {
		return time.Time{}, false, err
	}
	if !unix.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(unix.Int64, 0).UTC(), true, nil
}

// -----------------------------------------------------------------------------
// Transactions
// -----------------------------------------------------------------------------

func (d *SQLiteDB) InsertTransactions(txs []models.MTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO transactions (id, project_id, ts, route, asset_from, asset_to, amount_in, amount_out, usd_notional, fee_usd, status, tx_hash, chain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.Exec(t.ID, t.ProjectID, t.Ts.Unix(), t.Route, t.AssetFrom, t.AssetTo,
			t.AmountIn, t.AmountOut, t.UsdNotional, t.FeeUsd, t.Status, t.TxHash, t.Chain)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetTransactions(projectID string, limit int) ([]models.MTransaction, error) {
	rows, err := d.DB.Query(`
		SELECT id, project_id, ts, route, asset_from, asset_to, amount_in, amount_out, usd_notional, fee_usd, status, tx_hash, chain
		FROM transactions
		WHERE project_id = ?
		ORDER BY ts DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// -----------------------------------------------------------------------------
// API keys
// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetApiKeys(projectID string) ([]models.MApiKey, error) {
	rows, err := d.DB.Query(`
		SELECT id, project_id, name, key, status, created_at
		FROM api_keys
		WHERE project_id = ?
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanApiKeys(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CreateApiKey(key models.MApiKey) error {
	_, err := d.DB.Exec(`
		INSERT INTO api_keys (id, project_id, name, key, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key.ID, key.ProjectID, key.Name, key.Key, key.Status, key.CreatedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DeleteApiKey(id, projectID string) (bool, error) {
	res, err := d.DB.Exec(`DELETE FROM api_keys WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// -----------------------------------------------------------------------------
// Sessions
// -----------------------------------------------------------------------------

func (d *SQLiteDB) CreateSession(session models.MSession) error {
	_, err := d.DB.Exec(`
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, session.UserID, session.CreatedAt.Unix(), session.ExpiresAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetSession(token string) (*models.MSession, error) {
	row := d.DB.QueryRow(`
		SELECT token, user_id, created_at, expires_at
		FROM sessions WHERE token = ?
	`, token)

	var s models.MSession
	var created, expires int64
	if err := row.Scan(&s.Token, &s.UserID, &created, &expires); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.ExpiresAt = time.Unix(expires, 0).UTC()
	return &s, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DeleteSession(token string) error {
	_, err := d.DB.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
