// Package expenses provides the recurring operating expense register.
// The register's only downstream consumer is the burn-rate sync on the cash
// position: the sum of active monthly expenses is the burn estimate.
package expenses

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/domain"
)

// Expense is a recurring monthly operating expense.
type Expense struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	MonthlyAmount float64   `json:"monthly_amount"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks the fields required for a usable expense row.
func (e *Expense) Validate() error {
	if e.Name == "" {
		return domain.ValidationError{Field: "name", Message: "is required"}
	}
	if math.IsNaN(e.MonthlyAmount) || math.IsInf(e.MonthlyAmount, 0) || e.MonthlyAmount < 0 {
		return domain.ValidationError{Field: "monthly_amount", Message: "must be a non-negative finite number"}
	}
	return nil
}

// Repository handles expense persistence in finance.db.
type Repository struct {
	financeDB *sql.DB
	log       zerolog.Logger
}

// NewRepository creates a new expense repository.
func NewRepository(financeDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		financeDB: financeDB,
		log:       log.With().Str("repo", "expenses").Logger(),
	}
}

// Create inserts a new active expense.
func (r *Repository) Create(expense *Expense) (*Expense, error) {
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Category == "" {
		expense.Category = "general"
	}
	expense.IsActive = true
	expense.CreatedAt = time.Now().UTC()

	_, err := r.financeDB.Exec(
		`INSERT INTO expenses (id, name, category, monthly_amount, is_active, created_at)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		expense.ID, expense.Name, expense.Category, expense.MonthlyAmount, expense.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	return expense, nil
}

// ListActive returns all active expenses ordered by category then name.
func (r *Repository) ListActive() ([]Expense, error) {
	rows, err := r.financeDB.Query(
		`SELECT id, name, category, monthly_amount, is_active, created_at
		 FROM expenses WHERE is_active = 1
		 ORDER BY category ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		var isActive int
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.MonthlyAmount, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.IsActive = isActive == 1
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// Deactivate soft-deletes an expense. Idempotent for already-inactive rows.
func (r *Repository) Deactivate(id string) error {
	result, err := r.financeDB.Exec("UPDATE expenses SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "expense", ID: id}
	}

	return nil
}

// MonthlyBurnTotal sums the monthly amounts of all active expenses.
// This is the burn estimate the cash position sync consumes.
func (r *Repository) MonthlyBurnTotal() (float64, error) {
	var total float64
	err := r.financeDB.QueryRow(
		"SELECT COALESCE(SUM(monthly_amount), 0) FROM expenses WHERE is_active = 1",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total expenses: %w", err)
	}
	return total, nil
}
