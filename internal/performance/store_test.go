package performance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore keeps everything in slices/maps and supports per-call failure
// injection, mirroring how the zero-on-error read path must behave.
type fakeStore struct {
	simulados   []SimuladoInsert
	questoes    []QuestaoInsert
	disciplines []DisciplineRow
	totals      map[string]UserTotals

	failListSimulados   bool
	failListQuestoes    bool
	failListDisciplines bool
	failGetTotals       bool
	failInsertSimulado  bool
	failInsertQuestao   bool
	failWriteTotals     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{totals: make(map[string]UserTotals)}
}

func (f *fakeStore) ListSimulados(_ context.Context, userID string) ([]SimuladoRow, error) {
	if f.failListSimulados {
		return nil, errStoreDown
	}
	out := make([]SimuladoRow, 0)
	for _, s := range f.simulados {
		if s.UserID == userID {
			out = append(out, SimuladoRow{Score: s.Score, TimeTakenMinutes: s.TimeTakenMinutes})
		}
	}
	return out, nil
}

func (f *fakeStore) ListSimuladosBetween(_ context.Context, userID string, from, to time.Time) ([]SimuladoRow, error) {
	if f.failListSimulados {
		return nil, errStoreDown
	}
	out := make([]SimuladoRow, 0)
	for _, s := range f.simulados {
		if s.UserID != userID {
			continue
		}
		if s.CompletedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !s.CompletedAt.Before(to) {
			continue
		}
		out = append(out, SimuladoRow{Score: s.Score, TimeTakenMinutes: s.TimeTakenMinutes})
	}
	return out, nil
}

func (f *fakeStore) ListQuestoes(_ context.Context, userID string) ([]QuestaoRow, error) {
	if f.failListQuestoes {
		return nil, errStoreDown
	}
	out := make([]QuestaoRow, 0)
	for _, q := range f.questoes {
		if q.UserID == userID {
			out = append(out, QuestaoRow{Score: q.Score, Answers: q.Answers})
		}
	}
	return out, nil
}

func (f *fakeStore) CountQuestoesSince(_ context.Context, userID string, since time.Time) (int, error) {
	if f.failListQuestoes {
		return 0, errStoreDown
	}
	n := 0
	for _, q := range f.questoes {
		if q.UserID == userID && !q.CompletedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListDisciplineStats(_ context.Context, userID string) ([]DisciplineRow, error) {
	if f.failListDisciplines {
		return nil, errStoreDown
	}
	out := make([]DisciplineRow, 0)
	for _, d := range f.disciplines {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (f *fakeStore) GetDisciplineStats(_ context.Context, userID, disciplina string) (*DisciplineRow, error) {
	if f.failListDisciplines {
		return nil, errStoreDown
	}
	for i := range f.disciplines {
		if f.disciplines[i].UserID == userID && f.disciplines[i].Disciplina == disciplina {
			row := f.disciplines[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertSimulado(_ context.Context, in SimuladoInsert) error {
	if f.failInsertSimulado {
		return errStoreDown
	}
	f.simulados = append(f.simulados, in)
	return nil
}

func (f *fakeStore) InsertQuestao(_ context.Context, in QuestaoInsert) error {
	if f.failInsertQuestao {
		return errStoreDown
	}
	f.questoes = append(f.questoes, in)
	return nil
}

func (f *fakeStore) InsertDisciplineStats(_ context.Context, row DisciplineRow) error {
	if row.ID == "" {
		row.ID = fmt.Sprintf("d%d", len(f.disciplines)+1)
	}
	f.disciplines = append(f.disciplines, row)
	return nil
}

func (f *fakeStore) UpdateDisciplineStats(_ context.Context, row DisciplineRow) error {
	for i := range f.disciplines {
		if f.disciplines[i].ID == row.ID {
			f.disciplines[i] = row
			return nil
		}
	}
	return errors.New("discipline row not found")
}

func (f *fakeStore) GetUserTotals(_ context.Context, userID string) (*UserTotals, error) {
	if f.failGetTotals {
		return nil, errStoreDown
	}
	t, ok := f.totals[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) InsertUserTotals(_ context.Context, userID string, totals UserTotals) error {
	if f.failWriteTotals {
		return errStoreDown
	}
	f.totals[userID] = totals
	return nil
}

func (f *fakeStore) UpdateUserTotals(_ context.Context, userID string, totals UserTotals) error {
	if f.failWriteTotals {
		return errStoreDown
	}
	f.totals[userID] = totals
	return nil
}
