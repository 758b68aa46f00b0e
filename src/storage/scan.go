package storage

import (
	"database/sql"
	"time"

	"dkit-partners/src/models"
)

// -----------------------------------------------------------------------------
// Row scanning helpers shared by the SQLite and Postgres backends. Both store
// timestamps as unix seconds and booleans as 0/1, so the scan code is common.
// -----------------------------------------------------------------------------

func scanUser(row *sql.Row) (*models.MUser, error) {
	var u models.MUser
	var created int64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.ProjectID, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

// -----------------------------------------------------------------------------

func scanProject(row *sql.Row) (*models.MProject, error) {
	var p models.MProject
	var setup int
	err := row.Scan(&p.ID, &p.Name, &p.LogoUrl, &p.DappUrl, &p.BtcAddress,
		&p.ThorName, &p.MayaName, &p.ChainflipAddress, &setup)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.SetupCompleted = setup != 0
	return &p, nil
}

// -----------------------------------------------------------------------------

func scanMetricPoints(rows *sql.Rows) ([]models.MMetricPoint, error) {
	var points []models.MMetricPoint
	for rows.Next() {
		var p models.MMetricPoint
		var unix int64
		if err := rows.Scan(&p.ID, &p.ProjectID, &unix, &p.VolumeUsd, &p.FeesUsd, &p.Trades); err != nil {
			return nil, err
		}
		p.T = time.Unix(unix, 0).UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// -----------------------------------------------------------------------------

func scanTransactions(rows *sql.Rows) ([]models.MTransaction, error) {
	var txs []models.MTransaction
	for rows.Next() {
		var t models.MTransaction
		var unix int64
		if err := rows.Scan(&t.ID, &t.ProjectID, &unix, &t.Route, &t.AssetFrom, &t.AssetTo,
			&t.AmountIn, &t.AmountOut, &t.UsdNotional, &t.FeeUsd, &t.Status, &t.TxHash, &t.Chain); err != nil {
			return nil, err
		}
		t.Ts = time.Unix(unix, 0).UTC()
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// -----------------------------------------------------------------------------

func scanApiKeys(rows *sql.Rows) ([]models.MApiKey, error) {
	var keys []models.MApiKey
	for rows.Next() {
		var k models.MApiKey
		var created int64
		if err := rows.Scan(&k.ID, &k.ProjectID, &k.Name, &k.Key, &k.Status, &created); err != nil {
			return nil, err
		}
		k.CreatedAt = time.Unix(created, 0).UTC()
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// -----------------------------------------------------------------------------

func applyProjectUpdate(project *models.MProject, updates models.MProjectUpdate) {
	if updates.Name != nil {
		project.Name = *updates.Name
	}
	if updates.LogoUrl != nil {
		project.LogoUrl = *updates.LogoUrl
	}
	if updates.DappUrl != nil {
		project.DappUrl = *updates.DappUrl
	}
	if updates.BtcAddress != nil {
		project.BtcAddress = *updates.BtcAddress
	}
	if updates.ThorName != nil {
		project.ThorName = *updates.ThorName
	}
	if updates.MayaName != nil {
		project.MayaName = *updates.MayaName
	}
	if updates.ChainflipAddress != nil {
		project.ChainflipAddress = *updates.ChainflipAddress
	}
	if updates.SetupCompleted != nil {
		project.SetupCompleted = *updates.SetupCompleted
	}
}

// -----------------------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
