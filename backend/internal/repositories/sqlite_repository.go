package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

//go:embed schema.sql
var Schema string

const memoryDSN = ":memory:"

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path and applies
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; an in-memory database also lives on
	// one connection only.
	db.SetMaxOpenConns(1)

	if path != memoryDSN {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const upsertLottery = `
INSERT INTO lotteries (id, title, lottery_type, location, units_available,
    days_until_closing, min_income, max_income, is_applied, url, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    lottery_type = excluded.lottery_type,
    location = excluded.location,
    units_available = excluded.units_available,
    days_until_closing = excluded.days_until_closing,
    min_income = excluded.min_income,
    max_income = excluded.max_income,
    is_applied = excluded.is_applied,
    url = excluded.url,
    scraped_at = excluded.scraped_at`

func (r *SQLiteRepository) Save(ctx context.Context, lotteries []domain.Lottery) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertLottery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lotteries {
		_, err := stmt.ExecContext(ctx,
			l.ID, l.Title, string(l.Type), l.Location,
			nullInt(l.UnitsAvailable), nullInt(l.DaysUntilClosing),
			nullInt(l.MinIncome), nullInt(l.MaxIncome),
			l.IsApplied, l.URL, formatTime(l.ScrapedAt))
		if err != nil {
			return fmt.Errorf("save lottery %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

const selectLotteries = `
SELECT id, title, lottery_type, location, units_available, days_until_closing,
    min_income, max_income, is_applied, url, scraped_at
FROM lotteries`

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]domain.Lottery, error) {
	return r.queryLotteries(ctx, selectLotteries+" ORDER BY lottery_type, rowid")
}

func (r *SQLiteRepository) FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	return r.queryLotteries(ctx, selectLotteries+" WHERE lottery_type = ? ORDER BY rowid", string(t))
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (domain.Lottery, error) {
	found, err := r.queryLotteries(ctx, selectLotteries+" WHERE id = ?", id)
	if err != nil {
		return domain.Lottery{}, err
	}
	if len(found) == 0 {
		return domain.Lottery{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return found[0], nil
}

func (r *SQLiteRepository) queryLotteries(ctx context.Context, query string, args ...interface{}) ([]domain.Lottery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lotteries := make([]domain.Lottery, 0)
	for rows.Next() {
		var (
			l                                 domain.Lottery
			lotteryType, scrapedAt            string
			units, days, minIncome, maxIncome sql.NullInt64
		)
		err := rows.Scan(&l.ID, &l.Title, &lotteryType, &l.Location, &units, &days,
			&minIncome, &maxIncome, &l.IsApplied, &l.URL, &scrapedAt)
		if err != nil {
			return nil, err
		}
		l.Type = domain.LotteryType(lotteryType)
		l.UnitsAvailable = intPtr(units)
		l.DaysUntilClosing = intPtr(days)
		l.MinIncome = intPtr(minIncome)
		l.MaxIncome = intPtr(maxIncome)
		if l.ScrapedAt, err = parseTime(scrapedAt); err != nil {
			return nil, err
		}
		lotteries = append(lotteries, l)
	}
	return lotteries, rows.Err()
}

const insertApplication = `
INSERT INTO applications (run_id, lottery_id, title, lottery_type, status,
    eligible, message, page, card_index, min_income, max_income, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *SQLiteRepository) SaveApplications(ctx context.Context, runID string, results []domain.ApplicationResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, res := range withRunID(runID, results) {
		_, err := tx.ExecContext(ctx, insertApplication,
			res.RunID, res.LotteryID, res.Title, string(res.Type), string(res.Status),
			res.Eligible, res.Message, res.Page, res.CardIndex,
			nullInt(res.MinIncome), nullInt(res.MaxIncome), formatTime(res.ProcessedAt))
		if err != nil {
			return fmt.Errorf("save application %q: %w", res.Title, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) FindApplications(ctx context.Context) ([]domain.ApplicationResult, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT run_id, lottery_id, title, lottery_type, status, eligible, message,
    page, card_index, min_income, max_income, processed_at
FROM applications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.ApplicationResult, 0)
	for rows.Next() {
		var (
			res                     domain.ApplicationResult
			lotteryType, status, at string
			minIncome, maxIncome    sql.NullInt64
		)
		err := rows.Scan(&res.RunID, &res.LotteryID, &res.Title, &lotteryType, &status,
			&res.Eligible, &res.Message, &res.Page, &res.CardIndex, &minIncome, &maxIncome, &at)
		if err != nil {
			return nil, err
		}
		res.Type = domain.LotteryType(lotteryType)
		res.Status = domain.ApplicationStatus(status)
		res.MinIncome = intPtr(minIncome)
		res.MaxIncome = intPtr(maxIncome)
		if res.ProcessedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
