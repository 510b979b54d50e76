package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizgen-service/internal/domain"
)

// Store persists quizzes as JSONB documents and participants as rows.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, data, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		quiz.ID, raw, quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizExists
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if err != nil {
		return domain.Quiz{}, notFound(err, domain.ErrQuizNotFound, "load quiz")
	}
	return decodeQuiz(raw)
}

func (s *Store) UpdateQuiz(ctx context.Context, quizID string, patch domain.QuizPatch) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1 FOR UPDATE`, quizID).Scan(&raw)
		if err != nil {
			return notFound(err, domain.ErrQuizNotFound, "load quiz")
		}
		if quiz, err = decodeQuiz(raw); err != nil {
			return err
		}

		patch.Apply(&quiz)
		if raw, err = json.Marshal(quiz); err != nil {
			return fmt.Errorf("marshal quiz: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE quizzes SET data=$2, updated_at=now() WHERE id=$1`, quizID, raw); err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// AddParticipant locks the quiz row so concurrent joins cannot exceed limit.
func (s *Store) AddParticipant(ctx context.Context, p domain.Participant, limit int) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM quizzes WHERE id=$1 FOR UPDATE`, p.QuizID).Scan(&id)
		if err != nil {
			return notFound(err, domain.ErrQuizNotFound, "lock quiz")
		}

		var exists bool
		var count int
		err = tx.QueryRow(ctx, `
			SELECT coalesce(bool_or(wallet_address = $2), false), count(*)
			FROM participants WHERE quiz_id = $1`, p.QuizID, p.WalletAddress).Scan(&exists, &count)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if exists {
			return domain.ErrAlreadyParticipated
		}
		if count >= limit {
			return domain.ErrQuizFull
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO participants (quiz_id, wallet_address, name, joined_at)
			VALUES ($1, $2, $3, $4)`, p.QuizID, p.WalletAddress, p.Name, p.JoinedAt)
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
		return nil
	})
}

const participantColumns = `quiz_id, wallet_address, name, score, joined_at, submitted_at`

func (s *Store) GetParticipant(ctx context.Context, quizID, wallet string) (domain.Participant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE quiz_id=$1 AND wallet_address=$2`,
		quizID, wallet)
	p, err := scanParticipant(row)
	if err != nil {
		return domain.Participant{}, notFound(err, domain.ErrParticipantNotFound, "load participant")
	}
	return p, nil
}

func (s *Store) CountParticipants(ctx context.Context, quizID string) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM participants WHERE quiz_id=$1`, quizID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (s *Store) ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE quiz_id=$1 ORDER BY joined_at, wallet_address`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SetScore(ctx context.Context, quizID, wallet string, score int, at time.Time) (domain.Participant, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE participants SET score=$3, submitted_at=$4
		WHERE quiz_id=$1 AND wallet_address=$2
		RETURNING `+participantColumns, quizID, wallet, score, at)
	p, err := scanParticipant(row)
	if err != nil {
		return domain.Participant{}, notFound(err, domain.ErrParticipantNotFound, "set score")
	}
	return p, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanParticipant(row pgx.Row) (domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(&p.QuizID, &p.WalletAddress, &p.Name, &p.Score, &p.JoinedAt, &p.SubmittedAt)
	return p, err
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func notFound(err, sentinel error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}
