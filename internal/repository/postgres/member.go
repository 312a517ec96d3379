package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
	"github.com/Kotliarevtsev/mentionbot/internal/repository"
)

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Upsert(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO chat_members (chat_id, user_id, first_name, last_name, username, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			updated_at = EXCLUDED.updated_at`

	member.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		member.ChatID,
		member.UserID,
		member.FirstName,
		member.LastName,
		member.Username,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

func (r *memberRepository) Remove(ctx context.Context, chatID, userID int64) error {
	query := `DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, chatID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (r *memberRepository) List(ctx context.Context, chatID int64) ([]*models.Member, error) {
	query := `
		SELECT chat_id, user_id, first_name, last_name, username, updated_at
		FROM chat_members
		WHERE chat_id = $1
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(
			&m.ChatID,
			&m.UserID,
			&m.FirstName,
			&m.LastName,
			&m.Username,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

func (r *memberRepository) Count(ctx context.Context, chatID int64) (int, error) {
	query := `SELECT COUNT(*) FROM chat_members WHERE chat_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, chatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}
