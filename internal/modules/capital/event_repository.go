package capital

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/domain"
)

// EventRepository handles capital event persistence in ledger.db.
// Capital events form the append-only financing trail: investments, loans,
// grants, revenue milestones, and expense reductions. Deletion is always a
// soft delete (is_active = 0), never a physical DELETE.
//
// The repository performs no retries; retry policy belongs to the caller.
type EventRepository struct {
	ledgerDB *sql.DB        // ledger.db - capital_events table
	log      zerolog.Logger // Structured logger
}

// NewEventRepository creates a new capital event repository.
//
// Parameters:
//   - ledgerDB: Database connection to ledger.db
//   - log: Structured logger
//
// Returns:
//   - *EventRepository: Initialized repository instance
func NewEventRepository(ledgerDB *sql.DB, log zerolog.Logger) *EventRepository {
	return &EventRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "capital_events").Logger(),
	}
}

const eventColumns = `id, event_type, amount, timing_quarter, timing_year,
	       allocation_runway, allocation_cac, allocation_hiring, allocation_infrastructure,
	       label, notes, is_active, created_at, updated_at`

// Create inserts a new capital event. The event is always created active,
// and an ID is generated when the caller does not supply one.
//
// Parameters:
//   - event: CapitalEvent to create
//
// Returns:
//   - *CapitalEvent: Created event with ID and timestamps populated
//   - error: domain.ValidationError if the amount is not finite or the
//     (quarter, year) pair is malformed; wrapped error on database failure
func (r *EventRepository) Create(event *CapitalEvent) (*CapitalEvent, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.IsActive = true
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO capital_events (
			id, event_type, amount, timing_quarter, timing_year,
			allocation_runway, allocation_cac, allocation_hiring, allocation_infrastructure,
			label, notes, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`

	_, err := r.ledgerDB.Exec(
		query,
		event.ID,
		event.EventType,
		event.Amount,
		event.TimingQuarter,
		event.TimingYear,
		event.AllocationRunway,
		event.AllocationCac,
		event.AllocationHiring,
		event.AllocationInfrastructure,
		event.Label,
		event.Notes,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert capital event: %w", err)
	}

	r.log.Debug().
		Str("id", event.ID).
		Str("event_type", event.EventType).
		Float64("amount", event.Amount).
		Str("quarter", fmt.Sprintf("%s-%d", event.TimingQuarter, event.TimingYear)).
		Msg("Created capital event")

	return event, nil
}

// Get retrieves a capital event by ID, active or not.
//
// Parameters:
//   - id: Event ID
//
// Returns:
//   - *CapitalEvent: Event if found
//   - error: domain.NotFoundError if the ID does not resolve
func (r *EventRepository) Get(id string) (*CapitalEvent, error) {
	query := "SELECT " + eventColumns + " FROM capital_events WHERE id = ?"

	event, err := r.scanEvent(r.ledgerDB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "capital event", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capital event: %w", err)
	}

	return event, nil
}

// Update applies a partial patch to a capital event and refreshes its
// updated_at timestamp. Patched fields are re-validated as a whole record,
// so a patch cannot corrupt the (quarter, year) invariant.
//
// Parameters:
//   - id: Event ID (active or inactive)
//   - patch: Fields to change; nil fields are left unchanged
//
// Returns:
//   - *CapitalEvent: Updated event
//   - error: domain.NotFoundError if the ID does not resolve,
//     domain.ValidationError if the patched record is invalid
func (r *EventRepository) Update(id string, patch EventPatch) (*CapitalEvent, error) {
	event, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.EventType != nil {
		event.EventType = *patch.EventType
	}
	if patch.Amount != nil {
		event.Amount = *patch.Amount
	}
	if patch.TimingQuarter != nil {
		event.TimingQuarter = *patch.TimingQuarter
	}
	if patch.TimingYear != nil {
		event.TimingYear = *patch.TimingYear
	}
	if patch.AllocationRunway != nil {
		event.AllocationRunway = *patch.AllocationRunway
	}
	if patch.AllocationCac != nil {
		event.AllocationCac = *patch.AllocationCac
	}
	if patch.AllocationHiring != nil {
		event.AllocationHiring = *patch.AllocationHiring
	}
	if patch.AllocationInfrastructure != nil {
		event.AllocationInfrastructure = *patch.AllocationInfrastructure
	}
	if patch.Label != nil {
		event.Label = patch.Label
	}
	if patch.Notes != nil {
		event.Notes = patch.Notes
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	event.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE capital_events SET
			event_type = ?, amount = ?, timing_quarter = ?, timing_year = ?,
			allocation_runway = ?, allocation_cac = ?, allocation_hiring = ?, allocation_infrastructure = ?,
			label = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = r.ledgerDB.Exec(
		query,
		event.EventType,
		event.Amount,
		event.TimingQuarter,
		event.TimingYear,
		event.AllocationRunway,
		event.AllocationCac,
		event.AllocationHiring,
		event.AllocationInfrastructure,
		event.Label,
		event.Notes,
		event.UpdatedAt.Unix(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update capital event: %w", err)
	}

	return event, nil
}

// Deactivate soft-deletes a capital event. The operation is idempotent:
// deactivating an already-inactive event is a no-op, not an error. Only an
// unknown ID is reported.
//
// Parameters:
//   - id: Event ID
//
// Returns:
//   - error: domain.NotFoundError if the ID does not resolve
func (r *EventRepository) Deactivate(id string) error {
	now := time.Now().UTC().Unix()

	result, err := r.ledgerDB.Exec(
		"UPDATE capital_events SET is_active = 0, updated_at = ? WHERE id = ?",
		now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate capital event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "capital event", ID: id}
	}

	r.log.Debug().Str("id", id).Msg("Deactivated capital event")
	return nil
}

// ListActive returns all active capital events ordered by year then quarter
// number ascending. This is the snapshot the simulator consumes.
//
// Returns:
//   - []CapitalEvent: Active events in (year, quarter) order
//   - error: Error if query fails
func (r *EventRepository) ListActive() ([]CapitalEvent, error) {
	query := "SELECT " + eventColumns + ` FROM capital_events
		WHERE is_active = 1
		ORDER BY timing_year ASC,
		         CASE timing_quarter WHEN 'Q1' THEN 1 WHEN 'Q2' THEN 2 WHEN 'Q3' THEN 3 ELSE 4 END ASC`

	rows, err := r.ledgerDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query capital events: %w", err)
	}
	defer rows.Close()

	var events []CapitalEvent
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capital event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capital events: %w", err)
	}

	return events, nil
}

// TotalForYear sums the amounts of active events landing in the given year.
// Side-effect-free.
//
// Parameters:
//   - year: Four-digit year
//
// Returns:
//   - float64: Sum of amounts (0.0 if none)
//   - error: Error if query fails
func (r *EventRepository) TotalForYear(year int) (float64, error) {
	var total float64
	err := r.ledgerDB.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM capital_events WHERE is_active = 1 AND timing_year = ?",
		year,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total capital events for year %d: %w", year, err)
	}
	return total, nil
}

// rowScanner abstracts sql.Row and sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans a single capital event row
func (r *EventRepository) scanEvent(row rowScanner) (*CapitalEvent, error) {
	var event CapitalEvent
	var isActive int
	var createdAt, updatedAt int64

	err := row.Scan(
		&event.ID,
		&event.EventType,
		&event.Amount,
		&event.TimingQuarter,
		&event.TimingYear,
		&event.AllocationRunway,
		&event.AllocationCac,
		&event.AllocationHiring,
		&event.AllocationInfrastructure,
		&event.Label,
		&event.Notes,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.IsActive = isActive == 1
	event.CreatedAt = time.Unix(createdAt, 0).UTC()
	event.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &event, nil
}
