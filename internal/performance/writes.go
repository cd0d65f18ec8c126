package performance

import (
	"context"
	"encoding/json"
	"log"

	"aprovado/internal/cache"
)

type OutcomeStatus string

const (
	// OutcomeSuccess means every step of the write ran.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeDegraded means the progress row was persisted but a follow-up
	// step (running totals, cache invalidation) failed and was dropped.
	OutcomeDegraded OutcomeStatus = "degraded"
	// OutcomeFailed means the primary write failed; nothing was recorded.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome reports how much of a best-effort write actually happened.
// Write operations never return errors: completing the user's flow always
// wins over completeness of the statistics.
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	Problems []string      `json:"problems,omitempty"`
}

func successOutcome() Outcome {
	return Outcome{Status: OutcomeSuccess}
}

func (o *Outcome) degrade(problem string) {
	if o.Status == OutcomeSuccess {
		o.Status = OutcomeDegraded
	}
	o.Problems = append(o.Problems, problem)
}

func failedOutcome(problem string) Outcome {
	return Outcome{Status: OutcomeFailed, Problems: []string{problem}}
}

// RecordSimuladoCompletion appends a simulado attempt, bumps the user's
// running totals (an attempt with score above 50 counts as one correct
// answer at the account level), emits an audit event and invalidates the
// affected snapshots.
func (s *Service) RecordSimuladoCompletion(ctx context.Context, userID, simuladoID string, score float64, timeTakenMinutes int, answers []Answer) Outcome {
	err := s.store.InsertSimulado(ctx, SimuladoInsert{
		UserID:           userID,
		SimuladoID:       simuladoID,
		Score:            score,
		TimeTakenMinutes: timeTakenMinutes,
		Answers:          answers,
		CompletedAt:      s.now(),
	})
	if err != nil {
		s.logWriteError("record simulado", userID, err)
		return failedOutcome(err.Error())
	}

	out := successOutcome()

	correct := 0
	if score > 50 {
		correct = 1
	}
	if sub := s.UpdateUserStats(ctx, userID, 1, correct, timeTakenMinutes); sub.Status != OutcomeSuccess {
		out.degrade("user totals not updated")
	}

	s.audit.LogSimuladoComplete(ctx, userID, simuladoID, score, timeTakenMinutes)

	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "simulados"))
	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "complete"))
	return out
}

// RecordQuestaoCompletion appends a weekly-question-set attempt and bumps
// the user's totals from the exact per-answer correctness flags.
// Per-discipline stats are intentionally not touched here: the upstream
// flow never mapped answers to disciplinas, and downstream dashboards
// already account for that.
func (s *Service) RecordQuestaoCompletion(ctx context.Context, userID, questoesSemanaID string, score float64, answers []Answer) Outcome {
	err := s.store.InsertQuestao(ctx, QuestaoInsert{
		UserID:           userID,
		QuestoesSemanaID: questoesSemanaID,
		Score:            score,
		Answers:          answers,
		CompletedAt:      s.now(),
	})
	if err != nil {
		s.logWriteError("record questoes", userID, err)
		return failedOutcome(err.Error())
	}

	out := successOutcome()

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	total := len(answers)
	if sub := s.UpdateUserStats(ctx, userID, total, correct, total*minutesPerQuestao); sub.Status != OutcomeSuccess {
		out.degrade("user totals not updated")
	}

	s.audit.LogQuestaoComplete(ctx, userID, questoesSemanaID, score)

	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "questoes"))
	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "complete"))
	return out
}

// UpdateDisciplineStats adds the given deltas to the (user, disciplina)
// running totals, creating the row on first activity. The discipline
// average is recomputed as correct/total over the lifetime counters.
func (s *Service) UpdateDisciplineStats(ctx context.Context, userID, disciplina string, questionsAnswered, correctAnswers, studyTimeMinutes int) Outcome {
	existing, err := s.store.GetDisciplineStats(ctx, userID, disciplina)
	if err != nil {
		s.logWriteError("load discipline stats", userID, err)
		return failedOutcome(err.Error())
	}

	now := s.now()
	if existing == nil {
		row := DisciplineRow{
			UserID:           userID,
			Disciplina:       disciplina,
			TotalQuestions:   questionsAnswered,
			CorrectAnswers:   correctAnswers,
			AverageScore:     percentage(correctAnswers, questionsAnswered),
			StudyTimeMinutes: studyTimeMinutes,
			LastActivity:     now,
		}
		if err := s.store.InsertDisciplineStats(ctx, row); err != nil {
			s.logWriteError("insert discipline stats", userID, err)
			return failedOutcome(err.Error())
		}
	} else {
		existing.TotalQuestions += questionsAnswered
		existing.CorrectAnswers += correctAnswers
		existing.AverageScore = percentage(existing.CorrectAnswers, existing.TotalQuestions)
		existing.StudyTimeMinutes += studyTimeMinutes
		existing.LastActivity = now
		if err := s.store.UpdateDisciplineStats(ctx, *existing); err != nil {
			s.logWriteError("update discipline stats", userID, err)
			return failedOutcome(err.Error())
		}
	}

	s.cache.Delete(ctx, userID, cache.DisciplineKey(userID, disciplina))
	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "complete"))
	return successOutcome()
}

// UpdateUserStats adds the given deltas to the per-user totals row. The
// row is created on first activity rather than silently skipping the
// update, so a brand-new user's first completion is never dropped.
func (s *Service) UpdateUserStats(ctx context.Context, userID string, questionsAnswered, correctAnswers, studyTimeMinutes int) Outcome {
	totals, err := s.store.GetUserTotals(ctx, userID)
	if err != nil {
		s.logWriteError("load user totals", userID, err)
		return failedOutcome(err.Error())
	}

	if totals == nil {
		fresh := UserTotals{
			TotalQuestionsAnswered: questionsAnswered,
			TotalCorrectAnswers:    correctAnswers,
			StudyTimeMinutes:       studyTimeMinutes,
			AverageScore:           percentage(correctAnswers, questionsAnswered),
		}
		if err := s.store.InsertUserTotals(ctx, userID, fresh); err != nil {
			s.logWriteError("insert user totals", userID, err)
			return failedOutcome(err.Error())
		}
	} else {
		totals.TotalQuestionsAnswered += questionsAnswered
		totals.TotalCorrectAnswers += correctAnswers
		totals.StudyTimeMinutes += studyTimeMinutes
		totals.AverageScore = percentage(totals.TotalCorrectAnswers, totals.TotalQuestionsAnswered)
		if err := s.store.UpdateUserTotals(ctx, userID, *totals); err != nil {
			s.logWriteError("update user totals", userID, err)
			return failedOutcome(err.Error())
		}
	}

	s.cache.Delete(ctx, userID, cache.PerformanceKey(userID, "complete"))
	return successOutcome()
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func (s *Service) logWriteError(op, userID string, err error) {
	entry := map[string]any{
		"msg":     "performance write dropped",
		"op":      op,
		"user_id": userID,
		"error":   err.Error(),
	}
	b, _ := json.Marshal(entry)
	log.Printf("%s", string(b))
}
