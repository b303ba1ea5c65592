package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hyderabadinfra/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_activities (
			activity_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			activity_type TEXT NOT NULL,
			description TEXT,
			activity_data TEXT,
			related_entity_id TEXT,
			related_entity_type TEXT,
			session_id TEXT,
			ip_address TEXT,
			user_agent TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_activities table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_timestamp
		ON user_activities(user_id, timestamp DESC);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activity_type
		ON user_activities(activity_type);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS event_store (
			event_id TEXT PRIMARY KEY,
			aggregate_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			event_type TEXT NOT NULL,
			version INTEGER,
			event_data TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create event_store table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_event_aggregate
		ON event_store(aggregate_id, timestamp);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			search_query TEXT,
			search_filters TEXT,
			results_count INTEGER,
			ip_address TEXT,
			user_agent TEXT,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create search_history table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_user_created
		ON search_history(user_id, created_at DESC);
	`)
	return err
}

// InsertActivity appends one activity record. Records are never updated or
// deleted afterward; there is no retention policy and rows accumulate.
func (d *Database) InsertActivity(rec models.ActivityRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO user_activities
		(activity_id, user_id, timestamp, activity_type, description, activity_data,
		 related_entity_id, related_entity_type, session_id, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ActivityID,
		rec.UserID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.ActivityType,
		rec.Description,
		rec.ActivityData,
		rec.RelatedEntityID,
		rec.RelatedEntityType,
		rec.SessionID,
		rec.IPAddress,
		rec.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

const activityColumns = `
	activity_id, user_id, timestamp, activity_type,
	COALESCE(description, '') as description,
	COALESCE(activity_data, '') as activity_data,
	COALESCE(related_entity_id, '') as related_entity_id,
	COALESCE(related_entity_type, '') as related_entity_type,
	COALESCE(session_id, '') as session_id,
	COALESCE(ip_address, '') as ip_address,
	COALESCE(user_agent, '') as user_agent`

func (d *Database) scanActivities(rows *sql.Rows) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	for rows.Next() {
		var rec models.ActivityRecord
		var ts string
		err := rows.Scan(
			&rec.ActivityID,
			&rec.UserID,
			&ts,
			&rec.ActivityType,
			&rec.Description,
			&rec.ActivityData,
			&rec.RelatedEntityID,
			&rec.RelatedEntityType,
			&rec.SessionID,
			&rec.IPAddress,
			&rec.UserAgent,
		)
		if err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ActivitiesByUser returns one page of a user's activities, newest first.
// Pagination is offset+limit with a caller-supplied page size.
func (d *Database) ActivitiesByUser(userID string, page, size int) ([]models.ActivityRecord, error) {
	rows, err := d.db.Query(`
		SELECT `+activityColumns+`
		FROM user_activities
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	return d.scanActivities(rows)
}

// CountActivitiesByUser returns the total number of records for a user.
func (d *Database) CountActivitiesByUser(userID string) (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM user_activities WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// ActivitiesByUserSince returns a user's activities after the given instant,
// newest first, bounded by limit.
func (d *Database) ActivitiesByUserSince(userID string, since time.Time, limit int) ([]models.ActivityRecord, error) {
	rows, err := d.db.Query(`
		SELECT `+activityColumns+`
		FROM user_activities
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, userID, since.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activities: %w", err)
	}
	defer rows.Close()

	return d.scanActivities(rows)
}

// ActivitiesByType returns a user's activities of one type, newest first.
func (d *Database) ActivitiesByType(userID, activityType string, limit int) ([]models.ActivityRecord, error) {
	return d.ActivitiesByTypes(userID, []string{activityType}, limit)
}

// ActivitiesByTypes returns a user's activities whose type is in the given
// set, newest first.
func (d *Database) ActivitiesByTypes(userID string, activityTypes []string, limit int) ([]models.ActivityRecord, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(activityTypes)), ",")
	args := make([]interface{}, 0, len(activityTypes)+2)
	args = append(args, userID)
	for _, t := range activityTypes {
		args = append(args, t)
	}
	args = append(args, limit)

	rows, err := d.db.Query(`
		SELECT `+activityColumns+`
		FROM user_activities
		WHERE user_id = ? AND activity_type IN (`+placeholders+`)
		ORDER BY timestamp DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities by type: %w", err)
	}
	defer rows.Close()

	return d.scanActivities(rows)
}

// CountActivitiesByTypeSince returns activity counts per type for a user
// after the given instant.
func (d *Database) CountActivitiesByTypeSince(userID string, since time.Time) (map[string]int64, error) {
	rows, err := d.db.Query(`
		SELECT activity_type, COUNT(*)
		FROM user_activities
		WHERE user_id = ? AND timestamp >= ?
		GROUP BY activity_type
	`, userID, since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to count activities by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var activityType string
		var count int64
		if err := rows.Scan(&activityType, &count); err != nil {
			return nil, err
		}
		counts[activityType] = count
	}
	return counts, rows.Err()
}

// MostActiveDaySince returns the calendar day with the most activity for a
// user after the given instant. Ties resolve to whichever day the aggregation
// returns first. Empty string when the window has no activity.
func (d *Database) MostActiveDaySince(userID string, since time.Time) (string, error) {
	var day string
	err := d.db.QueryRow(`
		SELECT date(timestamp)
		FROM user_activities
		WHERE user_id = ? AND timestamp >= ?
		GROUP BY date(timestamp)
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`, userID, since.UTC().Format(time.RFC3339Nano)).Scan(&day)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return day, err
}

// LastActivityTime returns the newest activity timestamp for a user over the
// entire retained history, or nil when the user has none.
func (d *Database) LastActivityTime(userID string) (*time.Time, error) {
	var ts sql.NullString
	err := d.db.QueryRow(`
		SELECT MAX(timestamp) FROM user_activities WHERE user_id = ?
	`, userID).Scan(&ts)
	if err != nil {
		return nil, err
	}
	if !ts.Valid || ts.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last activity timestamp: %w", err)
	}
	return &t, nil
}
