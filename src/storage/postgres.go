package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dkit-partners/src/logger"
	"dkit-partners/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema is named after the executable so several deployments can share
	// one database.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."users" (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			project_id TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."projects" (
			id TEXT PRIMARY KEY,
			name TEXT,
			logo_url TEXT,
			dapp_url TEXT,
			btc_address TEXT,
			thor_name TEXT,
			maya_name TEXT,
			chainflip_address TEXT,
			setup_completed INTEGER NOT NULL DEFAULT 0
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."metric_points" (
			id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			t BIGINT NOT NULL,
			volume_usd DOUBLE PRECISION NOT NULL,
			fees_usd DOUBLE PRECISION NOT NULL,
			trades INTEGER NOT NULL,
			PRIMARY KEY (project_id, t)
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."transactions" (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			ts BIGINT NOT NULL,
			route TEXT NOT NULL,
			asset_from TEXT NOT NULL,
			asset_to TEXT NOT NULL,
			amount_in TEXT NOT NULL,
			amount_out TEXT NOT NULL,
			usd_notional DOUBLE PRECISION NOT NULL,
			fee_usd DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			chain TEXT NOT NULL
		);`, d.Schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_transactions_project_ts ON "%s"."transactions" (project_id, ts);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."api_keys" (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			key TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);`, d.Schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."sessions" (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL
		);`, d.Schema),
	}

	for _, stmt := range statements {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema objects: %w", err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (d *PostgresDB) GetUser(id string) (*models.MUser, error) {
	row := d.DB.QueryRow(fmt.Sprintf(`
		SELECT id, name, email, password, role, project_id, created_at
		FROM "%s"."users" WHERE id = $1
	`, d.Schema), id)
	return scanUser(row)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetUserByEmail(email string) (*models.MUser, error) {
	row := d.DB.QueryRow(fmt.Sprintf(`
		SELECT id, name, email, password, role, project_id, created_at
		FROM "%s"."users" WHERE email = $1
	`, d.Schema), email)
	return scanUser(row)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CreateUser(user models.MUser) error {
	_, err := d.DB.Exec(fmt.Sprintf(`
		INSERT INTO "%s"."users" (id, name, email, password, role, project_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.Schema), user.ID, user.Name, user.Email, user.Password, user.Role, user.ProjectID, user.CreatedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (d *PostgresDB) GetProject(id string) (*models.MProject, error) {
	row := d.DB.QueryRow(fmt.Sprintf(`
		SELECT id, name, logo_url, dapp_url, btc_address, thor_name, maya_name, chainflip_address, setup_completed
		FROM "%s"."projects" WHERE id = $1
	`, d.Schema), id)
	return scanProject(row)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetProjectIDs() ([]string, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`SELECT id FROM "%s"."projects"`, d.Schema))
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

func (d *PostgresDB) CreateProject(project models.MProject) error {
	_, err := d.DB.Exec(fmt.Sprintf(`
		INSERT INTO "%s"."projects" (id, name, logo_url, dapp_url, btc_address, thor_name, maya_name, chainflip_address, setup_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.Schema), project.ID, project.Name, project.LogoUrl, project.DappUrl, project.BtcAddress,
		project.ThorName, project.MayaName, project.ChainflipAddress, boolToInt(project.SetupCompleted))
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) UpdateProject(id string, updates models.MProjectUpdate) (*models.MProject, error) {
	project, err := d.GetProject(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}

	applyProjectUpdate(project, updates)

	_, err = d.DB.Exec(fmt.Sprintf(`
		UPDATE "%s"."projects"
		SET name = $1, logo_url = $2, dapp_url = $3, btc_address = $4, thor_name = $5, maya_name = $6, chainflip_address = $7, setup_completed = $8
		WHERE id = $9
	`, d.Schema), project.Name, project.LogoUrl, project.DappUrl, project.BtcAddress,
		project.ThorName, project.MayaName, project.ChainflipAddress, boolToInt(project.SetupCompleted), id)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// -----------------------------------------------------------------------------
// Metric points
// -----------------------------------------------------------------------------

func (d *PostgresDB) InsertMetricPoints(points []models.MMetricPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s"."metric_points" (id, project_id, t, volume_usd, fees_usd, trades)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id, t) DO NOTHING
	`, d.Schema))
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

func (d *PostgresDB) GetMetricPoints(projectID string, from, to *time.Time) ([]models.MMetricPoint, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, t, volume_usd, fees_usd, trades
		FROM "%s"."metric_points"
		WHERE project_id = $1
	`, d.Schema)
	args := []interface{}{projectID}

	if from != nil {
		args = append(args, from.Unix())
		query += fmt.Sprintf(" AND t >= $%d", len(args))
	}
	if to != nil {
		args = append(args, to.Unix())
		query += fmt.Sprintf(" AND t <= $%d", len(args))
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

func (d *PostgresDB) GetLatestMetricTime(projectID string) (time.Time, bool, error) {
	var unix sql.NullInt64
	err := d.DB.QueryRow(fmt.Sprintf(`
		SELECT MAX(t) FROM "%s"."metric_points" WHERE project_id = $1
	`, d.Schema), projectID).Scan(&unix)
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

func (d *PostgresDB) InsertTransactions(txs []models.MTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s"."transactions" (id, project_id, ts, route, asset_from, asset_to, amount_in, amount_out, usd_notional, fee_usd, status, tx_hash, chain)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, d.Schema))
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

func (d *PostgresDB) GetTransactions(projectID string, limit int) ([]models.MTransaction, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`
		SELECT id, project_id, ts, route, asset_from, asset_to, amount_in, amount_out, usd_notional, fee_usd, status, tx_hash, chain
		FROM "%s"."transactions"
		WHERE project_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`, d.Schema), projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// -----------------------------------------------------------------------------
// API keys
// -----------------------------------------------------------------------------

func (d *PostgresDB) GetApiKeys(projectID string) ([]models.MApiKey, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`
		SELECT id, project_id, name, key, status, created_at
		FROM "%s"."api_keys"
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, d.Schema), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanApiKeys(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CreateApiKey(key models.MApiKey) error {
	_, err := d.DB.Exec(fmt.Sprintf(`
		INSERT INTO "%s"."api_keys" (id, project_id, name, key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Schema), key.ID, key.ProjectID, key.Name, key.Key, key.Status, key.CreatedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) DeleteApiKey(id, projectID string) (bool, error) {
	res, err := d.DB.Exec(fmt.Sprintf(`
		DELETE FROM "%s"."api_keys" WHERE id = $1 AND project_id = $2
	`, d.Schema), id, projectID)
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

func (d *PostgresDB) CreateSession(session models.MSession) error {
	_, err := d.DB.Exec(fmt.Sprintf(`
		INSERT INTO "%s"."sessions" (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, d.Schema), session.Token, session.UserID, session.CreatedAt.Unix(), session.ExpiresAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetSession(token string) (*models.MSession, error) {
	row := d.DB.QueryRow(fmt.Sprintf(`
		SELECT token, user_id, created_at, expires_at
		FROM "%s"."sessions" WHERE token = $1
	`, d.Schema), token)

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

func (d *PostgresDB) DeleteSession(token string) error {
	_, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."sessions" WHERE token = $1`, d.Schema), token)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
