package performance

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"aprovado/internal/audit"
	"aprovado/internal/cache"
)

const snapshotTTL = 15 * time.Minute

// 2 minutes per answered question; the question sets do not record real time.
const minutesPerQuestao = 2

// Stats is the performance snapshot served to the dashboard. It is always
// derivable from the progress tables; cached copies are never a source of
// truth.
type Stats struct {
	TotalSimulados  int                     `json:"totalSimulados"`
	TotalQuestoes   int                     `json:"totalQuestoes"`
	TotalStudyTime  int                     `json:"totalStudyTime"`
	AverageScore    float64                 `json:"averageScore"`
	AccuracyRate    float64                 `json:"accuracyRate"`
	WeeklyProgress  WeeklyProgress          `json:"weeklyProgress"`
	DisciplineStats []DisciplinePerformance `json:"disciplineStats"`
}

type WeeklyProgress struct {
	Simulados        int     `json:"simulados"`
	Questoes         int     `json:"questoes"`
	StudyTime        int     `json:"studyTime"`
	ScoreImprovement float64 `json:"scoreImprovement"`
}

type DisciplinePerformance struct {
	Disciplina         string    `json:"disciplina"`
	TotalQuestions     int       `json:"totalQuestions"`
	CorrectAnswers     int       `json:"correctAnswers"`
	AverageScore       float64   `json:"averageScore"`
	StudyTime          int       `json:"studyTime"`
	LastActivity       time.Time `json:"lastActivity"`
	ProgressPercentage float64   `json:"progressPercentage"`
}

type simuladosSummary struct {
	Total        int
	AverageScore float64
	TotalTime    int
}

type questoesSummary struct {
	Total        int
	AccuracyRate float64
	TotalTime    int
}

// Service aggregates a user's study history into Stats. Collaborators are
// injected; there is no process-wide instance.
type Service struct {
	store Store
	cache cache.Cache
	audit audit.Logger
	now   func() time.Time
}

func NewService(store Store, c cache.Cache, al audit.Logger) *Service {
	return &Service{
		store: store,
		cache: c,
		audit: al,
		now:   time.Now,
	}
}

// CalculateUserPerformance answers the "complete" snapshot for a user,
// reading through the cache. On a miss the four sub-computations run
// concurrently; each degrades to zero values on failure so a single bad
// query never blanks the whole dashboard.
func (s *Service) CalculateUserPerformance(ctx context.Context, userID string) Stats {
	key := cache.PerformanceKey(userID, "complete")
	if raw, ok := s.cache.Get(ctx, userID, key); ok {
		var cached Stats
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
		// Unreadable entry: drop it and recompute.
		s.cache.Delete(ctx, userID, key)
	}

	var (
		simulados   simuladosSummary
		questoes    questoesSummary
		disciplines []DisciplinePerformance
		weekly      WeeklyProgress
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		simulados = s.calculateSimuladosStats(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		questoes = s.calculateQuestoesStats(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		disciplines = s.calculateDisciplineStats(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		weekly = s.calculateWeeklyProgress(ctx, userID)
	}()
	wg.Wait()

	stats := Stats{
		TotalSimulados:  simulados.Total,
		TotalQuestoes:   questoes.Total,
		TotalStudyTime:  simulados.TotalTime + questoes.TotalTime,
		AverageScore:    simulados.AverageScore,
		AccuracyRate:    questoes.AccuracyRate,
		WeeklyProgress:  weekly,
		DisciplineStats: disciplines,
	}

	if raw, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, userID, key, raw, snapshotTTL)
	}
	return stats
}

func (s *Service) calculateSimuladosStats(ctx context.Context, userID string) simuladosSummary {
	rows, err := s.store.ListSimulados(ctx, userID)
	if err != nil {
		s.logCalcError("simulados", userID, err)
		return simuladosSummary{}
	}
	return reduceSimulados(rows)
}

func (s *Service) calculateQuestoesStats(ctx context.Context, userID string) questoesSummary {
	rows, err := s.store.ListQuestoes(ctx, userID)
	if err != nil {
		s.logCalcError("questoes", userID, err)
		return questoesSummary{}
	}
	return reduceQuestoes(rows)
}

func (s *Service) calculateDisciplineStats(ctx context.Context, userID string) []DisciplinePerformance {
	rows, err := s.store.ListDisciplineStats(ctx, userID)
	if err != nil {
		s.logCalcError("disciplinas", userID, err)
		return []DisciplinePerformance{}
	}

	out := make([]DisciplinePerformance, 0, len(rows))
	for _, r := range rows {
		out = append(out, disciplinePerformance(r))
	}
	return out
}

func (s *Service) calculateWeeklyProgress(ctx context.Context, userID string) WeeklyProgress {
	now := s.now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	var (
		current  []SimuladoRow
		previous []SimuladoRow
		questoes int

		currentErr, previousErr, questoesErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		current, currentErr = s.store.ListSimuladosBetween(ctx, userID, weekAgo, time.Time{})
	}()
	go func() {
		defer wg.Done()
		previous, previousErr = s.store.ListSimuladosBetween(ctx, userID, twoWeeksAgo, weekAgo)
	}()
	go func() {
		defer wg.Done()
		questoes, questoesErr = s.store.CountQuestoesSince(ctx, userID, weekAgo)
	}()
	wg.Wait()

	if currentErr != nil {
		s.logCalcError("semana atual", userID, currentErr)
		current = nil
	}
	if previousErr != nil {
		s.logCalcError("semana anterior", userID, previousErr)
		previous = nil
	}
	if questoesErr != nil {
		s.logCalcError("questoes da semana", userID, questoesErr)
		questoes = 0
	}

	studyTime := 0
	for _, r := range current {
		studyTime += r.TimeTakenMinutes
	}

	return WeeklyProgress{
		Simulados:        len(current),
		Questoes:         questoes,
		StudyTime:        studyTime,
		ScoreImprovement: scoreImprovement(previous, current),
	}
}

func reduceSimulados(rows []SimuladoRow) simuladosSummary {
	sum := simuladosSummary{Total: len(rows)}
	if sum.Total == 0 {
		return sum
	}

	totalScore := 0.0
	for _, r := range rows {
		totalScore += r.Score
		sum.TotalTime += r.TimeTakenMinutes
	}
	sum.AverageScore = totalScore / float64(sum.Total)
	return sum
}

func reduceQuestoes(rows []QuestaoRow) questoesSummary {
	sum := questoesSummary{Total: len(rows)}

	totalQuestions := 0
	correct := 0
	for _, r := range rows {
		totalQuestions += len(r.Answers)
		for _, a := range r.Answers {
			if a.Correct {
				correct++
			}
		}
	}

	if totalQuestions > 0 {
		sum.AccuracyRate = float64(correct) / float64(totalQuestions) * 100
	}
	sum.TotalTime = sum.Total * minutesPerQuestao
	return sum
}

func disciplinePerformance(r DisciplineRow) DisciplinePerformance {
	p := DisciplinePerformance{
		Disciplina:     r.Disciplina,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		AverageScore:   r.AverageScore,
		StudyTime:      r.StudyTimeMinutes,
		LastActivity:   r.LastActivity,
	}
	if r.TotalQuestions > 0 {
		p.ProgressPercentage = float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100
	}
	return p
}

// scoreImprovement compares average simulado scores of the trailing week
// against the week before it, as a percentage. An empty previous week
// yields 0, never a division by zero.
func scoreImprovement(previous, current []SimuladoRow) float64 {
	prevAvg := averageScore(previous)
	if prevAvg <= 0 {
		return 0
	}
	curAvg := averageScore(current)
	return (curAvg - prevAvg) / prevAvg * 100
}

func averageScore(rows []SimuladoRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range rows {
		total += r.Score
	}
	return total / float64(len(rows))
}

func (s *Service) logCalcError(step, userID string, err error) {
	entry := map[string]any{
		"msg":     "performance calculation degraded",
		"step":    step,
		"user_id": userID,
		"error":   err.Error(),
	}
	b, _ := json.Marshal(entry)
	log.Printf("%s", string(b))
}
