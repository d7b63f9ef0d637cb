package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// TransactionRow mirrors a row of the transactions table.
type TransactionRow struct {
	ID          int64
	Amount      float64
	Category    string
	Description string
	Date        string
}

type CreateTransactionParams struct {
	Amount      float64
	Category    string
	Description string
	Date        string
}

const createTransaction = `
INSERT INTO transactions (amount, category, description, date)
VALUES (?, ?, ?, ?)
RETURNING id, amount, category, description, date
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Amount,
		arg.Category,
		arg.Description,
		arg.Date,
	)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Amount, &i.Category, &i.Description, &i.Date)
	return i, err
}

const listTransactions = `
SELECT id, amount, category, description, date
FROM transactions
ORDER BY id ASC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Amount, &i.Category, &i.Description, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CategorySumRow struct {
	Category    string
	TotalAmount float64
}

const getCategorySums = `
SELECT category, SUM(amount) AS total_amount
FROM transactions
GROUP BY category
ORDER BY category
`

func (q *Queries) GetCategorySums(ctx context.Context) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySumRow
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Category, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllTransactions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTransactionTables = `
SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'transactions'
`

func (q *Queries) CountTransactionTables(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactionTables)
	var count int64
	err := row.Scan(&count)
	return count, err
}
