package performance

import (
	"context"
	"time"
)

// Answer is one answered item inside a completion payload. Only the
// correctness flag participates in the aggregation; the remaining fields
// are persisted verbatim for later review.
type Answer struct {
	QuestionID string `json:"question_id,omitempty"`
	Selected   string `json:"selected,omitempty"`
	Correct    bool   `json:"correct"`
}

type SimuladoRow struct {
	Score            float64
	TimeTakenMinutes int
}

type QuestaoRow struct {
	Score   float64
	Answers []Answer
}

type DisciplineRow struct {
	ID               string
	UserID           string
	Disciplina       string
	TotalQuestions   int
	CorrectAnswers   int
	AverageScore     float64
	StudyTimeMinutes int
	LastActivity     time.Time
}

type UserTotals struct {
	TotalQuestionsAnswered int
	TotalCorrectAnswers    int
	StudyTimeMinutes       int
	AverageScore           float64
}

type SimuladoInsert struct {
	UserID           string
	SimuladoID       string
	Score            float64
	TimeTakenMinutes int
	Answers          []Answer
	CompletedAt      time.Time
}

type QuestaoInsert struct {
	UserID           string
	QuestoesSemanaID string
	Score            float64
	Answers          []Answer
	CompletedAt      time.Time
}

// Store is the persistence boundary of the aggregator. All listing
// methods already exclude soft-deleted progress rows.
type Store interface {
	ListSimulados(ctx context.Context, userID string) ([]SimuladoRow, error)
	// ListSimuladosBetween returns attempts completed in [from, to). A zero
	// "to" leaves the window open-ended.
	ListSimuladosBetween(ctx context.Context, userID string, from, to time.Time) ([]SimuladoRow, error)
	ListQuestoes(ctx context.Context, userID string) ([]QuestaoRow, error)
	CountQuestoesSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListDisciplineStats(ctx context.Context, userID string) ([]DisciplineRow, error)
	// GetDisciplineStats returns nil when no row exists for the pair.
	GetDisciplineStats(ctx context.Context, userID, disciplina string) (*DisciplineRow, error)

	InsertSimulado(ctx context.Context, in SimuladoInsert) error
	InsertQuestao(ctx context.Context, in QuestaoInsert) error
	InsertDisciplineStats(ctx context.Context, row DisciplineRow) error
	UpdateDisciplineStats(ctx context.Context, row DisciplineRow) error

	// GetUserTotals returns nil when the user has no totals row yet.
	GetUserTotals(ctx context.Context, userID string) (*UserTotals, error)
	InsertUserTotals(ctx context.Context, userID string, totals UserTotals) error
	UpdateUserTotals(ctx context.Context, userID string, totals UserTotals) error
}
