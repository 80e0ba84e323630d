package store

import (
	"database/sql"
	"time"
)

// Event is one journal entry. CreatedAt is in unix milliseconds.
type Event struct {
	ID        int64   `json:"id"`
	Kind      string  `json:"kind"`
	Source    string  `json:"source,omitempty"`
	Subject   string  `json:"subject,omitempty"`
	Message   string  `json:"message"`
	Distance  float64 `json:"distance,omitempty"`
	CreatedAt int64   `json:"createdAt"`
}

// EventRepository appends to and reads from the events table.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends e to the journal and fills in its ID. A zero CreatedAt is
// set to the current time.
func (r *EventRepository) Record(e *Event) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	result, err := r.db.Exec(
		`INSERT INTO events (kind, source, subject, message, distance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Kind, e.Source, e.Subject, e.Message, e.Distance, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, kind, source, subject, message, distance, created_at
		 FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Source, &e.Subject, &e.Message, &e.Distance, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByKind returns how many events of the given kind were recorded.
func (r *EventRepository) CountByKind(kind string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

// Prune keeps the newest keep events and deletes the rest. It returns the
// number of rows removed.
func (r *EventRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := r.db.Exec(
		`DELETE FROM events WHERE id NOT IN (
			SELECT id FROM events ORDER BY id DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
