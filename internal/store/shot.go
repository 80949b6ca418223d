package store

import (
	"database/sql"
	"time"
)

// Shot represents one detected release within a session.
type Shot struct {
	ID           int64
	SessionID    string
	Seq          int
	Score        int
	JumpHeightCM float64
	Explosivity  int
	Stability    int
	ElbowAngle   float64
	KneeAngle    float64
	ReleaseAngle float64
	Phase        string
	TakenAt      time.Time
}

// ShotRepository provides operations for shots.
type ShotRepository struct {
	db *sql.DB
}

// Shots returns the shot repository for this store.
func (s *Store) Shots() *ShotRepository {
	return &ShotRepository{db: s.db}
}

const insertShot = `INSERT INTO shots (session_id, seq, score, jump_height_cm, explosivity,
	stability, elbow_angle, knee_angle, release_angle, phase, taken_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func shotArgs(sh *Shot) []any {
	if sh.TakenAt.IsZero() {
		sh.TakenAt = time.Now()
	}
	return []any{sh.SessionID, sh.Seq, sh.Score, sh.JumpHeightCM, sh.Explosivity,
		sh.Stability, sh.ElbowAngle, sh.KneeAngle, sh.ReleaseAngle, sh.Phase, sh.TakenAt}
}

// Create inserts a shot and bumps the shot count of its session.
func (r *ShotRepository) Create(sh *Shot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(insertShot, shotArgs(sh)...)
	if err != nil {
		return err
	}
	if sh.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE sessions SET shots = shots + 1 WHERE id = ?`, sh.SessionID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateBatch inserts several shots for a session in a single transaction
// and sets the session's shot count to the number stored.
func (r *ShotRepository) CreateBatch(sessionID string, shots []*Shot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertShot)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sh := range shots {
		sh.SessionID = sessionID
		result, err := stmt.Exec(shotArgs(sh)...)
		if err != nil {
			return err
		}
		if sh.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`UPDATE sessions SET shots = (SELECT COUNT(*) FROM shots WHERE session_id = ?) WHERE id = ?`,
		sessionID, sessionID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListBySession retrieves the shots of a session in the order they were taken.
func (r *ShotRepository) ListBySession(sessionID string) ([]*Shot, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, score, jump_height_cm, explosivity, stability,
		 elbow_angle, knee_angle, release_angle, phase, taken_at
		 FROM shots
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []*Shot
	for rows.Next() {
		sh := &Shot{}
		err := rows.Scan(&sh.ID, &sh.SessionID, &sh.Seq, &sh.Score, &sh.JumpHeightCM,
			&sh.Explosivity, &sh.Stability, &sh.ElbowAngle, &sh.KneeAngle,
			&sh.ReleaseAngle, &sh.Phase, &sh.TakenAt)
		if err != nil {
			return nil, err
		}
		shots = append(shots, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shots, nil
}

// DeleteBySession removes all shots of a session.
func (r *ShotRepository) DeleteBySession(sessionID string) error {
	if _, err := r.db.Exec(`DELETE FROM shots WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE sessions SET shots = 0 WHERE id = ?`, sessionID)
	return err
}
