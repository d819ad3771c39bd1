package mysql

import (
	"context"
	"database/sql"

	"reviewking/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.EventStore = (*Repo)(nil)

func (r *Repo) LogEvent(ctx context.Context, e domain.Event) error {
	var created any
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.Category,
		e.Action,
		e.ClientID,
		e.Country,
		e.Language,
		e.UserAgent,
		e.IP,
		created,
	)
	return err
}

func (r *Repo) RecentEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, recentEventsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var clientID, country, language, userAgent, ip sql.NullString
		var created sql.NullTime
		if err := rows.Scan(
			&e.Category,
			&e.Action,
			&clientID,
			&country,
			&language,
			&userAgent,
			&ip,
			&created,
		); err != nil {
			return nil, err
		}
		e.ClientID = clientID.String
		e.Country = country.String
		e.Language = language.String
		e.UserAgent = userAgent.String
		e.IP = ip.String
		if created.Valid {
			e.CreatedAt = created.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) CountEvents(ctx context.Context, category, action string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countEventsSQL, category, category, action, action).Scan(&n)
	return n, err
}

func (r *Repo) LogImport(ctx context.Context, rec domain.ImportRecord) error {
	_, err := r.db.ExecContext(ctx, upsertImportSQL,
		rec.ReviewID,
		rec.ProductID,
		rec.SessionID,
		string(rec.Platform),
		rec.QualityScore,
	)
	return err
}
