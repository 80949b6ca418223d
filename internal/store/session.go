package store

import (
	"database/sql"
	"errors"
	"time"
)

// Hand values stored in sessions.dominant_hand.
const (
	HandRight = "right"
	HandLeft  = "left"
)

// Session represents a coaching session stored in the database. EndedAt is
// zero while the session is still running.
type Session struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	Shots          int
	Jumps          int
	AvgScore       float64
	AvgStability   float64
	AvgExplosivity float64
	AvgConsistency float64
	DominantHand   string
}

// Active reports whether the session has not been finished.
func (s *Session) Active() bool {
	return s.EndedAt.IsZero()
}

// Duration returns the session length, measured up to now when still active.
func (s *Session) Duration() time.Duration {
	if s.Active() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, started_at, ended_at, shots, jumps, avg_score, avg_stability,
	avg_explosivity, avg_consistency, dominant_hand`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := row.Scan(&s.ID, &s.StartedAt, &ended, &s.Shots, &s.Jumps, &s.AvgScore,
		&s.AvgStability, &s.AvgExplosivity, &s.AvgConsistency, &s.DominantHand)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		s.EndedAt = ended.Time
	}
	return s, nil
}

// Create inserts a new session. StartedAt defaults to now and DominantHand to
// right.
func (r *SessionRepository) Create(s *Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.DominantHand == "" {
		s.DominantHand = HandRight
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt, nullTime(s.EndedAt), s.Shots, s.Jumps, s.AvgScore,
		s.AvgStability, s.AvgExplosivity, s.AvgConsistency, s.DominantHand,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves sessions, most recent first. A non-positive limit returns
// all of them.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Finish stores the summary of a session. EndedAt defaults to now.
func (r *SessionRepository) Finish(s *Session) error {
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now()
	}
	if s.DominantHand == "" {
		s.DominantHand = HandRight
	}

	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, shots = ?, jumps = ?, avg_score = ?, avg_stability = ?,
		 avg_explosivity = ?, avg_consistency = ?, dominant_hand = ?
		 WHERE id = ?`,
		s.EndedAt, s.Shots, s.Jumps, s.AvgScore, s.AvgStability,
		s.AvgExplosivity, s.AvgConsistency, s.DominantHand, s.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a session and its shots.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
