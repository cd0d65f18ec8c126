package performance

import (
	"context"
	"math"
	"testing"
	"time"

	"aprovado/internal/audit"
	"aprovado/internal/cache"
)

func newTestService(store Store) (*Service, time.Time) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(store, cache.NewMemoryCache(), audit.NopLogger{})
	svc.now = func() time.Time { return now }
	return svc, now
}

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("%s must be finite, got %v", label, got)
	}
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s mismatch got=%v want=%v", label, got, want)
	}
}

func TestCalculateUserPerformanceNoActivity(t *testing.T) {
	svc, _ := newTestService(newFakeStore())

	stats := svc.CalculateUserPerformance(context.Background(), "u1")

	if stats.TotalSimulados != 0 || stats.TotalQuestoes != 0 || stats.TotalStudyTime != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
	approx(t, stats.AverageScore, 0, "averageScore")
	approx(t, stats.AccuracyRate, 0, "accuracyRate")
	approx(t, stats.WeeklyProgress.ScoreImprovement, 0, "scoreImprovement")
	if stats.DisciplineStats == nil || len(stats.DisciplineStats) != 0 {
		t.Fatalf("expected empty (non-nil) discipline list, got %+v", stats.DisciplineStats)
	}
}

func TestCalculateUserPerformanceAggregates(t *testing.T) {
	store := newFakeStore()
	svc, now := newTestService(store)

	store.simulados = []SimuladoInsert{
		{UserID: "u1", SimuladoID: "s1", Score: 80, TimeTakenMinutes: 30, CompletedAt: now.Add(-24 * time.Hour)},
		{UserID: "u1", SimuladoID: "s2", Score: 60, TimeTakenMinutes: 50, CompletedAt: now.Add(-10 * 24 * time.Hour)},
		{UserID: "outro", SimuladoID: "s3", Score: 10, TimeTakenMinutes: 99, CompletedAt: now},
	}
	store.questoes = []QuestaoInsert{
		{UserID: "u1", QuestoesSemanaID: "q1", Score: 66, CompletedAt: now.Add(-2 * 24 * time.Hour),
			Answers: []Answer{{Correct: true}, {Correct: true}, {Correct: false}}},
		{UserID: "u1", QuestoesSemanaID: "q2", Score: 50, CompletedAt: now.Add(-9 * 24 * time.Hour),
			Answers: []Answer{{Correct: true}, {Correct: false}}},
	}
	store.disciplines = []DisciplineRow{
		{ID: "d1", UserID: "u1", Disciplina: "direito constitucional", TotalQuestions: 10, CorrectAnswers: 5,
			AverageScore: 50, StudyTimeMinutes: 40, LastActivity: now.Add(-1 * time.Hour)},
		{ID: "d2", UserID: "u1", Disciplina: "português", TotalQuestions: 0, CorrectAnswers: 0,
			AverageScore: 0, StudyTimeMinutes: 0, LastActivity: now.Add(-48 * time.Hour)},
	}

	stats := svc.CalculateUserPerformance(context.Background(), "u1")

	if stats.TotalSimulados != 2 {
		t.Fatalf("expected 2 simulados, got %d", stats.TotalSimulados)
	}
	approx(t, stats.AverageScore, 70, "averageScore")
	if stats.TotalQuestoes != 2 {
		t.Fatalf("expected 2 questoes attempts, got %d", stats.TotalQuestoes)
	}
	// 3 of 5 answers correct.
	approx(t, stats.AccuracyRate, 60, "accuracyRate")
	// 30+50 simulado minutes plus 2 attempts at 2 min/question-set.
	if stats.TotalStudyTime != 84 {
		t.Fatalf("expected study time 84, got %d", stats.TotalStudyTime)
	}

	if stats.WeeklyProgress.Simulados != 1 || stats.WeeklyProgress.Questoes != 1 {
		t.Fatalf("unexpected weekly counts: %+v", stats.WeeklyProgress)
	}
	if stats.WeeklyProgress.StudyTime != 30 {
		t.Fatalf("expected weekly study time 30, got %d", stats.WeeklyProgress.StudyTime)
	}
	// Previous week average 60, current 80.
	approx(t, stats.WeeklyProgress.ScoreImprovement, (80.0-60.0)/60.0*100, "scoreImprovement")

	if len(stats.DisciplineStats) != 2 {
		t.Fatalf("expected 2 disciplines, got %d", len(stats.DisciplineStats))
	}
	if stats.DisciplineStats[0].Disciplina != "direito constitucional" {
		t.Fatalf("disciplines must be ordered by recency, got %+v", stats.DisciplineStats)
	}
	approx(t, stats.DisciplineStats[0].ProgressPercentage, 50, "progressPercentage")
	approx(t, stats.DisciplineStats[1].ProgressPercentage, 0, "empty discipline progress")
}

func TestCalculateUserPerformanceDegradesPerStep(t *testing.T) {
	store := newFakeStore()
	svc, now := newTestService(store)

	store.simulados = []SimuladoInsert{
		{UserID: "u1", SimuladoID: "s1", Score: 90, TimeTakenMinutes: 20, CompletedAt: now.Add(-time.Hour)},
	}
	store.disciplines = []DisciplineRow{
		{ID: "d1", UserID: "u1", Disciplina: "matemática", TotalQuestions: 4, CorrectAnswers: 2, LastActivity: now},
	}
	store.failListQuestoes = true

	stats := svc.CalculateUserPerformance(context.Background(), "u1")

	// The failing questoes sub-query zeroes only its own slice of the snapshot.
	if stats.TotalQuestoes != 0 || stats.AccuracyRate != 0 {
		t.Fatalf("expected zeroed questoes stats, got %+v", stats)
	}
	if stats.TotalSimulados != 1 || stats.WeeklyProgress.Questoes != 0 {
		t.Fatalf("independent sub-computations must survive, got %+v", stats)
	}
	if len(stats.DisciplineStats) != 1 {
		t.Fatalf("expected discipline stats to survive, got %+v", stats.DisciplineStats)
	}
}

func TestCalculateUserPerformanceServesCachedSnapshot(t *testing.T) {
	store := newFakeStore()
	svc, now := newTestService(store)
	ctx := context.Background()

	first := svc.CalculateUserPerformance(ctx, "u1")
	if first.TotalSimulados != 0 {
		t.Fatalf("expected empty snapshot, got %+v", first)
	}

	// A row written behind the cache's back is invisible until the TTL or an
	// explicit invalidation.
	store.simulados = append(store.simulados, SimuladoInsert{
		UserID: "u1", SimuladoID: "s1", Score: 100, TimeTakenMinutes: 10, CompletedAt: now,
	})
	second := svc.CalculateUserPerformance(ctx, "u1")
	if second.TotalSimulados != 0 {
		t.Fatalf("expected cached snapshot, got %+v", second)
	}
}

func TestReduceQuestoesEmptyAnswerLists(t *testing.T) {
	sum := reduceQuestoes([]QuestaoRow{{Score: 10}, {Score: 20}})
	if sum.Total != 2 {
		t.Fatalf("expected 2 attempts, got %d", sum.Total)
	}
	if math.IsNaN(sum.AccuracyRate) || sum.AccuracyRate != 0 {
		t.Fatalf("accuracy must be 0 with no answers, got %v", sum.AccuracyRate)
	}
	if sum.TotalTime != 4 {
		t.Fatalf("expected estimated time 4, got %d", sum.TotalTime)
	}
}

func TestScoreImprovement(t *testing.T) {
	tests := []struct {
		name     string
		previous []SimuladoRow
		current  []SimuladoRow
		want     float64
	}{
		{name: "no previous week", previous: nil, current: []SimuladoRow{{Score: 90}}, want: 0},
		{name: "no current week", previous: []SimuladoRow{{Score: 50}}, current: nil, want: -100},
		{name: "improved", previous: []SimuladoRow{{Score: 50}}, current: []SimuladoRow{{Score: 60}}, want: 20},
		{name: "declined", previous: []SimuladoRow{{Score: 80}}, current: []SimuladoRow{{Score: 60}}, want: -25},
		{name: "both empty", previous: nil, current: nil, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scoreImprovement(tc.previous, tc.current)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("scoreImprovement must be finite, got %v", got)
			}
			if math.Abs(got-tc.want) > 1e-6 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDisciplinePerformanceRecomputesProgress(t *testing.T) {
	p := disciplinePerformance(DisciplineRow{
		Disciplina: "direito administrativo", TotalQuestions: 17, CorrectAnswers: 8, AverageScore: 47.0588,
	})
	approx(t, p.ProgressPercentage, 8.0/17.0*100, "progressPercentage")

	empty := disciplinePerformance(DisciplineRow{Disciplina: "raciocínio lógico"})
	approx(t, empty.ProgressPercentage, 0, "empty progressPercentage")
}
