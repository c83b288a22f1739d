package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/menus"
)

// Detection is one persisted classification row.
type Detection struct {
	ID         int64
	ObservedAt time.Time
	Menu       string
	Anchor     string
	Score      float64
	Matched    bool
}

// RecordSample persists one emitted classification.
func (s *Store) RecordSample(sample menus.Sample) error {
	_, err := s.conn.Exec(`
		INSERT INTO detections (observed_at, menu, anchor, score, matched)
		VALUES (?, ?, ?, ?, ?)
	`, sample.Time, sample.Menu, sample.Anchor, sample.Score, boolToInt(sample.Matched))
	if err != nil {
		return fmt.Errorf("failed to record detection: %w", err)
	}
	return nil
}

// HandleSample persists a sample, logging instead of failing the caller.
// This lets the store sit directly on the detection loop's sink list.
func (s *Store) HandleSample(sample menus.Sample) {
	if err := s.RecordSample(sample); err != nil {
		s.log.Error("failed to persist sample", err)
	}
}

// RecentDetections returns up to limit rows, newest first.
func (s *Store) RecentDetections(limit int) ([]Detection, error) {
	rows, err := s.conn.Query(`
		SELECT id, observed_at, menu, anchor, score, matched
		FROM detections
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []Detection
	for rows.Next() {
		var d Detection
		var matched int
		if err := rows.Scan(&d.ID, &d.ObservedAt, &d.Menu, &d.Anchor, &d.Score, &matched); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		d.Matched = matched != 0
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

// MenuCounts returns how many matched detections were recorded per menu.
func (s *Store) MenuCounts() (map[string]int, error) {
	rows, err := s.conn.Query(`
		SELECT menu, COUNT(*)
		FROM detections
		WHERE matched = 1
		GROUP BY menu
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var menu string
		var n int
		if err := rows.Scan(&menu, &n); err != nil {
			return nil, err
		}
		counts[menu] = n
	}
	return counts, rows.Err()
}

// BeginSession records the start of a detection session and returns its ID.
func (s *Store) BeginSession(processName string) (int64, error) {
	res, err := s.conn.Exec(`
		INSERT INTO sessions (started_at, process_name)
		VALUES (?, ?)
	`, time.Now(), processName)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session: %w", err)
	}
	return res.LastInsertId()
}

// EndSession stamps a session's end time and how many samples it emitted.
func (s *Store) EndSession(id int64, samplesEmitted int) error {
	res, err := s.conn.Exec(`
		UPDATE sessions
		SET ended_at = ?, samples_emitted = ?
		WHERE id = ?
	`, time.Now(), samplesEmitted, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
