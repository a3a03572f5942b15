package store

import "context"

// Stats persists per-term keyword statistics between runs.
type Stats interface {
	Stats(ctx context.Context) (map[string]KeywordStat, error)
	BumpChecked(ctx context.Context, terms []string, count int) error
	BumpHits(ctx context.Context, terms []string) error
}

// Stats returns all persisted keyword statistics keyed by term
func (s *Store) Stats(ctx context.Context) (map[string]KeywordStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term, checked, hits FROM keyword_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]KeywordStat)
	for rows.Next() {
		var stat KeywordStat
		if err := rows.Scan(&stat.Term, &stat.Checked, &stat.Hits); err != nil {
			return nil, err
		}
		out[stat.Term] = stat
	}
	return out, rows.Err()
}

// BumpChecked adds count evaluated listings to each term's checked total
func (s *Store) BumpChecked(ctx context.Context, terms []string, count int) error {
	for _, term := range terms {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO keyword_stats(term, checked, hits, updated_at)
			VALUES (?, ?, 0, CURRENT_TIMESTAMP)
			ON CONFLICT(term) DO UPDATE SET
				checked = checked + excluded.checked,
				updated_at = CURRENT_TIMESTAMP`, term, count)
		if err != nil {
			return err
		}
	}
	return nil
}

// BumpHits increments the hit count for each term that produced at least
// one actionable decision
func (s *Store) BumpHits(ctx context.Context, terms []string) error {
	for _, term := range terms {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO keyword_stats(term, checked, hits, updated_at)
			VALUES (?, 0, 1, CURRENT_TIMESTAMP)
			ON CONFLICT(term) DO UPDATE SET
				hits = hits + 1,
				updated_at = CURRENT_TIMESTAMP`, term)
		if err != nil {
			return err
		}
	}
	return nil
}
