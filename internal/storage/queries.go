package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row models.

type CategoryRow struct {
	ID            string
	HouseholdID   string
	Name          string
	Kind          string
	DefaultAmount decimal.NullDecimal
	PeriodMonths  int64
	SortOrder     int64
}

type BudgetPeriodRow struct {
	ID          int64
	HouseholdID string
	Month       string
	Status      string
	CreatedAt   time.Time
}

type BudgetLineRow struct {
	PeriodID   int64
	CategoryID string
	Scope      string
	Amount     decimal.Decimal
}

type TransactionRow struct {
	ID          int64
	HouseholdID string
	Amount      decimal.Decimal
	Kind        string
	CategoryID  sql.NullString
	Scope       string
	OccurredAt  string
	Description string
}

const upsertHousehold = `-- name: UpsertHousehold :exec
INSERT INTO households (id, name) VALUES (?, ?)
ON CONFLICT (id) DO NOTHING
`

func (q *Queries) UpsertHousehold(ctx context.Context, id, name string) error {
	_, err := q.db.ExecContext(ctx, upsertHousehold, id, name)
	return err
}

const bumpDataVersion = `-- name: BumpDataVersion :execrows
UPDATE households SET data_version = data_version + 1 WHERE id = ?
`

func (q *Queries) BumpDataVersion(ctx context.Context, householdID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, bumpDataVersion, householdID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getDataVersion = `-- name: GetDataVersion :one
SELECT data_version FROM households WHERE id = ?
`

func (q *Queries) GetDataVersion(ctx context.Context, householdID string) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx, getDataVersion, householdID).Scan(&v)
	return v, err
}

const listHouseholdIDs = `-- name: ListHouseholdIDs :many
SELECT id FROM households ORDER BY id
`

func (q *Queries) ListHouseholdIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listHouseholdIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

const createCategory = `-- name: CreateCategory :exec
INSERT INTO categories (id, household_id, name, kind, default_amount, period_months, sort_order)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateCategory(ctx context.Context, arg CategoryRow) error {
	_, err := q.db.ExecContext(ctx, createCategory,
		arg.ID,
		arg.HouseholdID,
		arg.Name,
		arg.Kind,
		arg.DefaultAmount,
		arg.PeriodMonths,
		arg.SortOrder,
	)
	return err
}

const listCategories = `-- name: ListCategories :many
SELECT id, household_id, name, kind, default_amount, period_months, sort_order
FROM categories
WHERE household_id = ?
ORDER BY sort_order, name
`

func (q *Queries) ListCategories(ctx context.Context, householdID string) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(
			&i.ID,
			&i.HouseholdID,
			&i.Name,
			&i.Kind,
			&i.DefaultAmount,
			&i.PeriodMonths,
			&i.SortOrder,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const categoryExists = `-- name: CategoryExists :one
SELECT COUNT(*) FROM categories WHERE household_id = ? AND id = ?
`

func (q *Queries) CategoryExists(ctx context.Context, householdID, id string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, categoryExists, householdID, id).Scan(&n)
	return n > 0, err
}

const insertBudgetPeriod = `-- name: InsertBudgetPeriod :execrows
INSERT INTO budget_periods (household_id, month, status) VALUES (?, ?, 'active')
ON CONFLICT (household_id, month) DO NOTHING
`

func (q *Queries) InsertBudgetPeriod(ctx context.Context, householdID, month string) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertBudgetPeriod, householdID, month)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getBudgetPeriod = `-- name: GetBudgetPeriod :one
SELECT id, household_id, month, status, created_at
FROM budget_periods
WHERE household_id = ? AND month = ?
`

func (q *Queries) GetBudgetPeriod(ctx context.Context, householdID, month string) (BudgetPeriodRow, error) {
	var i BudgetPeriodRow
	err := q.db.QueryRowContext(ctx, getBudgetPeriod, householdID, month).Scan(
		&i.ID,
		&i.HouseholdID,
		&i.Month,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const seedZeroBudgetLines = `-- name: SeedZeroBudgetLines :execrows
INSERT INTO budget_lines (period_id, category_id, scope, amount)
SELECT ?, id, 'shared', '0' FROM categories
WHERE household_id = ? AND kind = 'expense'
ON CONFLICT (period_id, category_id, scope) DO NOTHING
`

func (q *Queries) SeedZeroBudgetLines(ctx context.Context, periodID int64, householdID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, seedZeroBudgetLines, periodID, householdID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertBudgetLine = `-- name: UpsertBudgetLine :exec
INSERT INTO budget_lines (period_id, category_id, scope, amount)
VALUES (?, ?, ?, ?)
ON CONFLICT (period_id, category_id, scope)
DO UPDATE SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertBudgetLine(ctx context.Context, arg BudgetLineRow) error {
	_, err := q.db.ExecContext(ctx, upsertBudgetLine, arg.PeriodID, arg.CategoryID, arg.Scope, arg.Amount)
	return err
}

const deleteBudgetLine = `-- name: DeleteBudgetLine :execrows
DELETE FROM budget_lines WHERE period_id = ? AND category_id = ? AND scope = ?
`

func (q *Queries) DeleteBudgetLine(ctx context.Context, periodID int64, categoryID, scope string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudgetLine, periodID, categoryID, scope)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listBudgetLines = `-- name: ListBudgetLines :many
SELECT period_id, category_id, scope, amount
FROM budget_lines
WHERE period_id = ?
ORDER BY category_id, scope
`

func (q *Queries) ListBudgetLines(ctx context.Context, periodID int64) ([]BudgetLineRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetLines, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetLineRow
	for rows.Next() {
		var i BudgetLineRow
		if err := rows.Scan(&i.PeriodID, &i.CategoryID, &i.Scope, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (household_id, amount, kind, category_id, scope, occurred_at, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateTransaction(ctx context.Context, arg TransactionRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTransaction,
		arg.HouseholdID,
		arg.Amount,
		arg.Kind,
		arg.CategoryID,
		arg.Scope,
		arg.OccurredAt,
		arg.Description,
	).Scan(&id)
	return id, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, household_id, amount, kind, category_id, scope, occurred_at, description
FROM transactions
WHERE household_id = ? AND occurred_at >= ? AND occurred_at < ?
ORDER BY occurred_at, id
`

func (q *Queries) ListTransactions(ctx context.Context, householdID, start, end string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, householdID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.HouseholdID,
			&i.Amount,
			&i.Kind,
			&i.CategoryID,
			&i.Scope,
			&i.OccurredAt,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
