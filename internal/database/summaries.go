package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docsum/internal/domain"
)

// SaveSummary stores s under userID, replacing any summary with the same ID
// in that scope.
func (d *Database) SaveSummary(ctx context.Context, userID string, s domain.Summary) error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("summary ID is empty")
	}

	if s.Content == "" {
		return errors.New("summary content is empty")
	}

	createdAt, err := formatTime(s.CreatedAt)
	if err != nil {
		return fmt.Errorf("format created at: %w", err)
	}

	query := `insert into summaries
	(id, user_id, title, content, summary_type, word_count, document_name, created_at)
	values (?, ?, ?, ?, ?, ?, ?, ?)
	on conflict (user_id, id) do update
	set title = excluded.title,
	content = excluded.content,
	summary_type = excluded.summary_type,
	word_count = excluded.word_count,
	document_name = excluded.document_name,
	created_at = excluded.created_at`

	_, err = d.db.ExecContext(ctx, query,
		s.ID,
		userID,
		s.Title,
		s.Content,
		string(s.SummaryType),
		s.WordCount,
		s.DocumentName,
		createdAt,
	)

	return err
}

func (d *Database) ListSummaries(ctx context.Context, userID string) ([]domain.Summary, error) {
	query := `select id, title, content, summary_type, word_count, document_name, created_at
	from summaries
	where user_id = ?
	order by created_at desc, id`

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"userID", userID,
				"operation", "ListSummaries")
		}
	}()

	summaries := []domain.Summary{}
	for rows.Next() {
		var (
			s           domain.Summary
			summaryType string
			createdAt   string
		)
		if err = rows.Scan(
			&s.ID,
			&s.Title,
			&s.Content,
			&summaryType,
			&s.WordCount,
			&s.DocumentName,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		s.SummaryType = domain.SummaryType(summaryType)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("summary %s: %w", s.ID, err)
		}

		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// DeleteSummary reports whether a summary with id existed in userID's scope.
func (d *Database) DeleteSummary(ctx context.Context, userID string, id string) (bool, error) {
	query := "delete from summaries where user_id = ? and id = ?"

	res, err := d.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return n > 0, nil
}

// DeleteSummariesBefore removes summaries created before cutoff in every scope.
func (d *Database) DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	before, err := formatTime(cutoff)
	if err != nil {
		return 0, fmt.Errorf("format cutoff: %w", err)
	}

	query := "delete from summaries where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
