package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertSnapshotSQL = `INSERT INTO rate_snapshots (
        bucket_ts,
        rate_id,
        metal,
        purity,
        rate_per_gram,
        rate_per_ten_gram,
        current_price,
        predicted_price,
        change_pct,
        status,
        error
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    )
    ON CONFLICT (bucket_ts, rate_id) DO UPDATE
    SET
        metal             = EXCLUDED.metal,
        purity            = EXCLUDED.purity,
        rate_per_gram     = EXCLUDED.rate_per_gram,
        rate_per_ten_gram = EXCLUDED.rate_per_ten_gram,
        current_price     = EXCLUDED.current_price,
        predicted_price   = EXCLUDED.predicted_price,
        change_pct        = EXCLUDED.change_pct,
        status            = EXCLUDED.status,
        error             = EXCLUDED.error;`

	selectSnapshotColumns = `SELECT
        bucket_ts,
        rate_id,
        metal,
        purity,
        rate_per_gram::text,
        rate_per_ten_gram::text,
        current_price::text,
        predicted_price::text,
        change_pct::text,
        status,
        error,
        created_at
    FROM rate_snapshots`

	listSnapshotsBetweenSQL = selectSnapshotColumns + `
    WHERE bucket_ts >= $1
      AND bucket_ts < $2
    ORDER BY bucket_ts, rate_id;`

	listRecentSnapshotsSQL = selectSnapshotColumns + `
    ORDER BY bucket_ts DESC, rate_id
    LIMIT $1;`

	countSnapshotsSQL = `SELECT COUNT(*) FROM rate_snapshots;`

	insertAlertSQL = `INSERT INTO rate_alerts (
        bucket_ts,
        rate_id,
        change_pct,
        threshold_pct,
        direction,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (bucket_ts, rate_id) DO UPDATE
    SET change_pct    = EXCLUDED.change_pct,
        threshold_pct = EXCLUDED.threshold_pct,
        direction     = EXCLUDED.direction,
        channels      = EXCLUDED.channels
    RETURNING id, bucket_ts, rate_id, change_pct::text, threshold_pct::text, direction, channels, created_at;`

	selectAlertColumns = `SELECT
        id,
        bucket_ts,
        rate_id,
        change_pct::text,
        threshold_pct::text,
        direction,
        channels,
        created_at
    FROM rate_alerts`

	lastAlertSQL = selectAlertColumns + `
    WHERE rate_id = $1
    ORDER BY created_at DESC
    LIMIT 1;`

	listRecentAlertsSQL = selectAlertColumns + `
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertsBeforeSQL = `DELETE FROM rate_alerts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SnapshotStore defines operations for rate snapshot persistence.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, snap RateSnapshot) error
	ListSnapshotsBetween(ctx context.Context, from, to time.Time) ([]RateSnapshot, error)
	ListRecentSnapshots(ctx context.Context, limit int) ([]RateSnapshot, error)
	CountSnapshots(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	LastAlert(ctx context.Context, rateID int64) (*AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to rate snapshots and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Migrate executes every *.sql file in dir in lexical order. Statements must
// be idempotent.
func (s *Store) Migrate(ctx context.Context, dir string) ([]string, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return names, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// best effort; the lock dies with the session anyway
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// UpsertSnapshot persists or updates one rate snapshot.
func (s *Store) UpsertSnapshot(ctx context.Context, snap RateSnapshot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var change interface{}
	if snap.ChangePct != nil {
		change = snap.ChangePct.String()
	}

	var errMsg interface{}
	if snap.Error != nil {
		errMsg = *snap.Error
	}

	status := snap.Status
	if status == "" {
		status = StatusComplete
	}

	_, execErr := pool.Exec(ctx, upsertSnapshotSQL,
		snap.Bucket,
		snap.RateID,
		snap.Metal,
		snap.Purity,
		snap.RatePerGram.String(),
		snap.RatePerTenGram.String(),
		snap.CurrentPrice.String(),
		snap.PredictedPrice.String(),
		change,
		status,
		errMsg,
	)
	if execErr != nil {
		return fmt.Errorf("upsert rate snapshot: %w", execErr)
	}
	return nil
}

// ListSnapshotsBetween lists snapshots within [from, to).
func (s *Store) ListSnapshotsBetween(ctx context.Context, from, to time.Time) ([]RateSnapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSnapshotsBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list snapshots between: %w", queryErr)
	}
	return collectSnapshots(rows, 0)
}

// ListRecentSnapshots lists the most recent snapshots ordered by descending bucket.
func (s *Store) ListRecentSnapshots(ctx context.Context, limit int) ([]RateSnapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSnapshotsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent snapshots: %w", queryErr)
	}
	return collectSnapshots(rows, limit)
}

// CountSnapshots counts stored snapshots.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSnapshotsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count snapshots: %w", scanErr)
	}
	return count, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	channels := alert.Channels
	if channels == nil {
		channels = []string{}
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Bucket,
		alert.RateID,
		alert.ChangePct.String(),
		alert.ThresholdPct.String(),
		alert.Direction,
		channels,
	)
	rec, scanErr := scanAlert(row)
	if scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, nil
}

// LastAlert returns the newest alert for rateID, nil when there is none.
func (s *Store) LastAlert(ctx context.Context, rateID int64) (*AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rec, scanErr := scanAlert(pool.QueryRow(ctx, lastAlertSQL, rateID))
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return nil, nil
	}
	if scanErr != nil {
		return nil, fmt.Errorf("last alert: %w", scanErr)
	}
	return &rec, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// DeleteAlertsBefore deletes historical alerts.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alerts before: %w", execErr)
	}
	return nil
}

func collectSnapshots(rows pgx.Rows, capacity int) ([]RateSnapshot, error) {
	defer rows.Close()

	snaps := make([]RateSnapshot, 0, capacity)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return snaps, nil
}

func scanSnapshot(row pgx.Row) (RateSnapshot, error) {
	var (
		snap                RateSnapshot
		perGram, perTenGram string
		current, predicted  string
		change, errMsg      *string
	)

	if err := row.Scan(
		&snap.Bucket,
		&snap.RateID,
		&snap.Metal,
		&snap.Purity,
		&perGram,
		&perTenGram,
		&current,
		&predicted,
		&change,
		&snap.Status,
		&errMsg,
		&snap.CreatedAt,
	); err != nil {
		return RateSnapshot{}, err
	}

	var err error
	if snap.RatePerGram, err = decimal.NewFromString(perGram); err != nil {
		return RateSnapshot{}, fmt.Errorf("parse rate per gram: %w", err)
	}
	if snap.RatePerTenGram, err = decimal.NewFromString(perTenGram); err != nil {
		return RateSnapshot{}, fmt.Errorf("parse rate per ten gram: %w", err)
	}
	if snap.CurrentPrice, err = decimal.NewFromString(current); err != nil {
		return RateSnapshot{}, fmt.Errorf("parse current price: %w", err)
	}
	if snap.PredictedPrice, err = decimal.NewFromString(predicted); err != nil {
		return RateSnapshot{}, fmt.Errorf("parse predicted price: %w", err)
	}
	if change != nil {
		pct, err := decimal.NewFromString(*change)
		if err != nil {
			return RateSnapshot{}, fmt.Errorf("parse change pct: %w", err)
		}
		snap.ChangePct = &pct
	}
	snap.Error = errMsg

	return snap, nil
}

func scanAlert(row pgx.Row) (AlertRecord, error) {
	var rec AlertRecord
	var changeStr, thresholdStr string
	if err := row.Scan(
		&rec.ID,
		&rec.Bucket,
		&rec.RateID,
		&changeStr,
		&thresholdStr,
		&rec.Direction,
		&rec.Channels,
		&rec.CreatedAt,
	); err != nil {
		return AlertRecord{}, err
	}

	var convErr error
	rec.ChangePct, convErr = decimal.NewFromString(changeStr)
	if convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse change pct: %w", convErr)
	}
	rec.ThresholdPct, convErr = decimal.NewFromString(thresholdStr)
	if convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse threshold pct: %w", convErr)
	}
	return rec, nil
}
