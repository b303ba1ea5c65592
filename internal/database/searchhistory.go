package database

import (
	"fmt"
	"time"

	"hyderabadinfra/server/internal/models"
)

// InsertSearchHistory persists one search request summary. Rows are written
// once and read-only afterward.
func (d *Database) InsertSearchHistory(h models.SearchHistory) error {
	_, err := d.db.Exec(`
		INSERT INTO search_history
		(id, user_id, search_query, search_filters, results_count, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.ID,
		h.UserID,
		h.SearchQuery,
		h.SearchFilter,
		h.ResultsCount,
		h.IPAddress,
		h.UserAgent,
		h.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert search history: %w", err)
	}
	return nil
}

// RecentSearchesByUser returns a user's most recent searches, newest first.
func (d *Database) RecentSearchesByUser(userID string, limit int) ([]models.SearchHistory, error) {
	rows, err := d.db.Query(`
		SELECT id, COALESCE(user_id, ''), COALESCE(search_query, ''),
		       COALESCE(search_filters, ''), COALESCE(results_count, 0),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM search_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var searches []models.SearchHistory
	for rows.Next() {
		var h models.SearchHistory
		var ts string
		err := rows.Scan(&h.ID, &h.UserID, &h.SearchQuery, &h.SearchFilter,
			&h.ResultsCount, &h.IPAddress, &h.UserAgent, &ts)
		if err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			h.CreatedAt = t
		}
		searches = append(searches, h)
	}
	return searches, rows.Err()
}

// PopularSearchTerms returns the most frequent non-empty free-text queries
// across all users, most frequent first.
func (d *Database) PopularSearchTerms(limit int) ([]string, error) {
	rows, err := d.db.Query(`
		SELECT search_query
		FROM search_history
		WHERE search_query IS NOT NULL AND search_query != ''
		GROUP BY search_query
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular search terms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
