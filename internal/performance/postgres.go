package performance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore implements Store over the relational tables
// user_simulado_progress, user_questoes_semanais_progress,
// user_discipline_stats and user_stats.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListSimulados(ctx context.Context, userID string) ([]SimuladoRow, error) {
	return s.querySimulados(ctx, `
		SELECT score, time_taken_minutes
		FROM user_simulado_progress
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID)
}

func (s *PostgresStore) ListSimuladosBetween(ctx context.Context, userID string, from, to time.Time) ([]SimuladoRow, error) {
	if to.IsZero() {
		return s.querySimulados(ctx, `
			SELECT score, time_taken_minutes
			FROM user_simulado_progress
			WHERE user_id = $1 AND deleted_at IS NULL AND completed_at >= $2
		`, userID, from)
	}
	return s.querySimulados(ctx, `
		SELECT score, time_taken_minutes
		FROM user_simulado_progress
		WHERE user_id = $1 AND deleted_at IS NULL
		  AND completed_at >= $2 AND completed_at < $3
	`, userID, from, to)
}

func (s *PostgresStore) querySimulados(ctx context.Context, query string, args ...interface{}) ([]SimuladoRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query simulado progress: %w", err)
	}
	defer rows.Close()

	out := make([]SimuladoRow, 0)
	for rows.Next() {
		var r SimuladoRow
		if err := rows.Scan(&r.Score, &r.TimeTakenMinutes); err != nil {
			return nil, fmt.Errorf("scan simulado row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulado rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListQuestoes(ctx context.Context, userID string) ([]QuestaoRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT score, answers
		FROM user_questoes_semanais_progress
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query questoes progress: %w", err)
	}
	defer rows.Close()

	out := make([]QuestaoRow, 0)
	for rows.Next() {
		var (
			r   QuestaoRow
			raw []byte
		)
		if err := rows.Scan(&r.Score, &raw); err != nil {
			return nil, fmt.Errorf("scan questao row: %w", err)
		}
		if len(raw) > 0 {
			// Malformed answer payloads count as zero answered questions.
			_ = json.Unmarshal(raw, &r.Answers)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questao rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountQuestoesSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM user_questoes_semanais_progress
		WHERE user_id = $1 AND deleted_at IS NULL AND completed_at >= $2
	`, userID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questoes since: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListDisciplineStats(ctx context.Context, userID string) ([]DisciplineRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, disciplina, total_questions, correct_answers,
		       average_score, study_time_minutes, last_activity
		FROM user_discipline_stats
		WHERE user_id = $1
		ORDER BY last_activity DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query discipline stats: %w", err)
	}
	defer rows.Close()

	out := make([]DisciplineRow, 0)
	for rows.Next() {
		var r DisciplineRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Disciplina, &r.TotalQuestions,
			&r.CorrectAnswers, &r.AverageScore, &r.StudyTimeMinutes, &r.LastActivity); err != nil {
			return nil, fmt.Errorf("scan discipline row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discipline rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDisciplineStats(ctx context.Context, userID, disciplina string) (*DisciplineRow, error) {
	var r DisciplineRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, disciplina, total_questions, correct_answers,
		       average_score, study_time_minutes, last_activity
		FROM user_discipline_stats
		WHERE user_id = $1 AND disciplina = $2
	`, userID, disciplina).Scan(&r.ID, &r.UserID, &r.Disciplina, &r.TotalQuestions,
		&r.CorrectAnswers, &r.AverageScore, &r.StudyTimeMinutes, &r.LastActivity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load discipline stats: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) InsertSimulado(ctx context.Context, in SimuladoInsert) error {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return fmt.Errorf("encode simulado answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_simulado_progress (
			id, user_id, simulado_id, score, time_taken_minutes, answers, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
	`, uuid.NewString(), in.UserID, in.SimuladoID, in.Score, in.TimeTakenMinutes, answers, in.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert simulado progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertQuestao(ctx context.Context, in QuestaoInsert) error {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return fmt.Errorf("encode questao answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_questoes_semanais_progress (
			id, user_id, questoes_semanais_id, score, answers, completed_at
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`, uuid.NewString(), in.UserID, in.QuestoesSemanaID, in.Score, answers, in.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert questao progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertDisciplineStats(ctx context.Context, row DisciplineRow) error {
	id := row.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_discipline_stats (
			id, user_id, disciplina, total_questions, correct_answers,
			average_score, study_time_minutes, last_activity, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, id, row.UserID, row.Disciplina, row.TotalQuestions, row.CorrectAnswers,
		row.AverageScore, row.StudyTimeMinutes, row.LastActivity)
	if err != nil {
		return fmt.Errorf("insert discipline stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateDisciplineStats(ctx context.Context, row DisciplineRow) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE user_discipline_stats
		SET total_questions = $2,
			correct_answers = $3,
			average_score = $4,
			study_time_minutes = $5,
			last_activity = $6,
			updated_at = now()
		WHERE id = $1
	`, row.ID, row.TotalQuestions, row.CorrectAnswers, row.AverageScore,
		row.StudyTimeMinutes, row.LastActivity)
	if err != nil {
		return fmt.Errorf("update discipline stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserTotals(ctx context.Context, userID string) (*UserTotals, error) {
	var t UserTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT total_questions_answered, total_correct_answers,
		       study_time_minutes, average_score
		FROM user_stats
		WHERE user_id = $1
	`, userID).Scan(&t.TotalQuestionsAnswered, &t.TotalCorrectAnswers,
		&t.StudyTimeMinutes, &t.AverageScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user totals: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) InsertUserTotals(ctx context.Context, userID string, totals UserTotals) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (
			user_id, total_questions_answered, total_correct_answers,
			study_time_minutes, average_score, updated_at
		) VALUES ($1, $2, $3, $4, $5, now())
	`, userID, totals.TotalQuestionsAnswered, totals.TotalCorrectAnswers,
		totals.StudyTimeMinutes, totals.AverageScore)
	if err != nil {
		return fmt.Errorf("insert user totals: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUserTotals(ctx context.Context, userID string, totals UserTotals) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE user_stats
		SET total_questions_answered = $2,
			total_correct_answers = $3,
			study_time_minutes = $4,
			average_score = $5,
			updated_at = now()
		WHERE user_id = $1
	`, userID, totals.TotalQuestionsAnswered, totals.TotalCorrectAnswers,
		totals.StudyTimeMinutes, totals.AverageScore)
	if err != nil {
		return fmt.Errorf("update user totals: %w", err)
	}
	return nil
}
