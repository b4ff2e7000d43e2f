package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"hogar/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05Z"

// PeriodLines is a budget period together with its explicit lines.
type PeriodLines struct {
	Period core.BudgetPeriod
	Lines  []core.BudgetLine
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn in a transaction and bumps the household data version
// before committing, so cached reports for it become stale. Unknown
// households fail with ErrHouseholdNotFound.
func (r *SQLiteRepository) withTx(ctx context.Context, householdID string, fn func(q *Queries) (bool, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if _, err := q.GetDataVersion(ctx, householdID); errors.Is(err, sql.ErrNoRows) {
		return core.ErrHouseholdNotFound
	} else if err != nil {
		return fmt.Errorf("get data version: %w", err)
	}

	changed, err := fn(q)
	if err != nil {
		return err
	}
	if changed {
		n, err := q.BumpDataVersion(ctx, householdID)
		if err != nil {
			return fmt.Errorf("bump data version: %w", err)
		}
		if n == 0 {
			return core.ErrHouseholdNotFound
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// EnsureHousehold creates the household if it does not exist yet.
func (r *SQLiteRepository) EnsureHousehold(ctx context.Context, id, name string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptyHousehold
	}
	if err := r.queries.UpsertHousehold(ctx, id, name); err != nil {
		return fmt.Errorf("upsert household: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListHouseholdIDs(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListHouseholdIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	return ids, nil
}

// DataVersion returns a counter that changes on every write affecting the
// household's budget inputs.
func (r *SQLiteRepository) DataVersion(ctx context.Context, householdID string) (int64, error) {
	v, err := r.queries.GetDataVersion(ctx, householdID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrHouseholdNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get data version: %w", err)
	}
	return v, nil
}

// CreateCategory stores a category, assigning an ID when empty.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.PeriodMonths == 0 {
		c.PeriodMonths = core.Monthly
	}

	err := r.withTx(ctx, c.HouseholdID, func(q *Queries) (bool, error) {
		err := q.CreateCategory(ctx, CategoryRow{
			ID:            c.ID,
			HouseholdID:   c.HouseholdID,
			Name:          c.Name,
			Kind:          string(c.Kind),
			DefaultAmount: c.DefaultAmount,
			PeriodMonths:  int64(c.PeriodMonths),
			SortOrder:     int64(c.SortOrder),
		})
		if err != nil {
			return false, fmt.Errorf("create category: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		"household_id", c.HouseholdID,
		"category_id", c.ID,
		"name", c.Name,
		"period_months", c.PeriodMonths)

	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, householdID string) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = core.Category{
			ID:            row.ID,
			HouseholdID:   row.HouseholdID,
			Name:          row.Name,
			Kind:          core.Kind(row.Kind),
			DefaultAmount: row.DefaultAmount,
			PeriodMonths:  int(row.PeriodMonths),
			SortOrder:     int(row.SortOrder),
		}
	}
	return out, nil
}

// EnsurePeriod opens the budget period for month. It is idempotent: the
// second call returns the existing period and created=false. When seedZero
// is set, a newly created period gets an explicit zero line for every
// expense category.
func (r *SQLiteRepository) EnsurePeriod(ctx context.Context, householdID string, month core.MonthKey, seedZero bool) (core.BudgetPeriod, bool, error) {
	if err := month.Validate(); err != nil {
		return core.BudgetPeriod{}, false, err
	}

	var (
		period  core.BudgetPeriod
		created bool
	)
	err := r.withTx(ctx, householdID, func(q *Queries) (bool, error) {
		n, err := q.InsertBudgetPeriod(ctx, householdID, month.String())
		if err != nil {
			return false, fmt.Errorf("insert budget period: %w", err)
		}
		created = n > 0

		row, err := q.GetBudgetPeriod(ctx, householdID, month.String())
		if err != nil {
			return false, fmt.Errorf("get budget period: %w", err)
		}
		period, err = periodFromRow(row)
		if err != nil {
			return false, err
		}

		if created && seedZero {
			if _, err := q.SeedZeroBudgetLines(ctx, period.ID, householdID); err != nil {
				return false, fmt.Errorf("seed budget lines: %w", err)
			}
		}
		return created, nil
	})
	if err != nil {
		return core.BudgetPeriod{}, false, err
	}

	if created {
		slog.InfoContext(ctx, "Budget period opened",
			"household_id", householdID,
			"month", month.String(),
			"period_id", period.ID,
			"seed_zero", seedZero)
	}
	return period, created, nil
}

func (r *SQLiteRepository) GetPeriod(ctx context.Context, householdID string, month core.MonthKey) (core.BudgetPeriod, error) {
	return r.getPeriod(ctx, r.queries, householdID, month)
}

func (r *SQLiteRepository) getPeriod(ctx context.Context, q *Queries, householdID string, month core.MonthKey) (core.BudgetPeriod, error) {
	row, err := q.GetBudgetPeriod(ctx, householdID, month.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetPeriod{}, fmt.Errorf("%w: %s", core.ErrPeriodNotFound, month)
	}
	if err != nil {
		return core.BudgetPeriod{}, fmt.Errorf("get budget period: %w", err)
	}
	return periodFromRow(row)
}

// SetBudgetLine stores an explicit amount for a category in month. The
// month's budget period must already exist.
func (r *SQLiteRepository) SetBudgetLine(ctx context.Context, householdID string, month core.MonthKey, line core.BudgetLine) error {
	if line.Scope == "" {
		line.Scope = core.ScopeShared
	}
	if err := line.Validate(); err != nil {
		return fmt.Errorf("validate budget line: %w", err)
	}

	return r.withTx(ctx, householdID, func(q *Queries) (bool, error) {
		period, err := r.getPeriod(ctx, q, householdID, month)
		if err != nil {
			return false, err
		}
		ok, err := q.CategoryExists(ctx, householdID, line.CategoryID)
		if err != nil {
			return false, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return false, fmt.Errorf("%w: %s", core.ErrCategoryNotFound, line.CategoryID)
		}
		err = q.UpsertBudgetLine(ctx, BudgetLineRow{
			PeriodID:   period.ID,
			CategoryID: line.CategoryID,
			Scope:      string(line.Scope),
			Amount:     line.Amount,
		})
		if err != nil {
			return false, fmt.Errorf("upsert budget line: %w", err)
		}
		return true, nil
	})
}

// ClearBudgetLine removes an explicit amount so the category default applies
// again. Clearing a line that does not exist is not an error.
func (r *SQLiteRepository) ClearBudgetLine(ctx context.Context, householdID string, month core.MonthKey, categoryID string, scope core.Scope) error {
	if scope == "" {
		scope = core.ScopeShared
	}
	return r.withTx(ctx, householdID, func(q *Queries) (bool, error) {
		period, err := r.getPeriod(ctx, q, householdID, month)
		if err != nil {
			return false, err
		}
		n, err := q.DeleteBudgetLine(ctx, period.ID, categoryID, string(scope))
		if err != nil {
			return false, fmt.Errorf("delete budget line: %w", err)
		}
		return n > 0, nil
	})
}

// LoadOverrides returns the budget periods that exist among months, each with
// its lines. Months without a period are absent from the result.
func (r *SQLiteRepository) LoadOverrides(ctx context.Context, householdID string, months []core.MonthKey) ([]PeriodLines, error) {
	var out []PeriodLines
	for _, m := range months {
		period, err := r.GetPeriod(ctx, householdID, m)
		if errors.Is(err, core.ErrPeriodNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows, err := r.queries.ListBudgetLines(ctx, period.ID)
		if err != nil {
			return nil, fmt.Errorf("list budget lines: %w", err)
		}
		pl := PeriodLines{Period: period, Lines: make([]core.BudgetLine, len(rows))}
		for i, row := range rows {
			pl.Lines[i] = core.BudgetLine{
				PeriodID:   row.PeriodID,
				CategoryID: row.CategoryID,
				Scope:      core.Scope(row.Scope),
				Amount:     row.Amount,
			}
		}
		out = append(out, pl)
	}
	return out, nil
}

// AddTransaction records a transaction and returns its ID.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	var id int64
	err := r.withTx(ctx, t.HouseholdID, func(q *Queries) (bool, error) {
		row := TransactionRow{
			HouseholdID: t.HouseholdID,
			Amount:      t.Amount,
			Kind:        string(t.Kind),
			Scope:       string(t.Scope),
			OccurredAt:  t.Date.UTC().Format(timeLayout),
			Description: t.Description,
		}
		if t.CategoryID != nil {
			ok, err := q.CategoryExists(ctx, t.HouseholdID, *t.CategoryID)
			if err != nil {
				return false, fmt.Errorf("check category: %w", err)
			}
			if !ok {
				return false, fmt.Errorf("%w: %s", core.ErrCategoryNotFound, *t.CategoryID)
			}
			row.CategoryID = sql.NullString{String: *t.CategoryID, Valid: true}
		}
		var err error
		id, err = q.CreateTransaction(ctx, row)
		if err != nil {
			return false, fmt.Errorf("create transaction: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListTransactions returns the household's transactions dated in
// [start, end).
func (r *SQLiteRepository) ListTransactions(ctx context.Context, householdID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, householdID,
		start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		date, err := time.Parse(timeLayout, row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse transaction %d date: %w", row.ID, err)
		}
		tx := core.Transaction{
			ID:          row.ID,
			HouseholdID: row.HouseholdID,
			Amount:      row.Amount,
			Kind:        core.Kind(row.Kind),
			Scope:       core.Scope(row.Scope),
			Date:        date,
			Description: row.Description,
		}
		if row.CategoryID.Valid {
			id := row.CategoryID.String
			tx.CategoryID = &id
		}
		out[i] = tx
	}
	return out, nil
}

func periodFromRow(row BudgetPeriodRow) (core.BudgetPeriod, error) {
	m, err := core.ParseMonthKey(row.Month)
	if err != nil {
		return core.BudgetPeriod{}, fmt.Errorf("stored period %d: %w", row.ID, err)
	}
	return core.BudgetPeriod{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		Month:       m,
		Status:      core.PeriodStatus(row.Status),
		CreatedAt:   row.CreatedAt,
	}, nil
}
