package performance

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders the user's performance snapshot as a spreadsheet:
// one summary sheet plus one row per disciplina.
func (s *Service) ExportXLSX(ctx context.Context, userID string) ([]byte, error) {
	stats := s.CalculateUserPerformance(ctx, userID)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetName(sheet, "Resumo")
	sheet = "Resumo"

	summary := [][2]any{
		{"Simulados realizados", stats.TotalSimulados},
		{"Questões semanais realizadas", stats.TotalQuestoes},
		{"Tempo de estudo (min)", stats.TotalStudyTime},
		{"Média nos simulados", stats.AverageScore},
		{"Taxa de acerto (%)", stats.AccuracyRate},
		{"Simulados na semana", stats.WeeklyProgress.Simulados},
		{"Questões na semana", stats.WeeklyProgress.Questoes},
		{"Tempo de estudo na semana (min)", stats.WeeklyProgress.StudyTime},
		{"Evolução da pontuação (%)", stats.WeeklyProgress.ScoreImprovement},
	}
	for i, kv := range summary {
		row := i + 1
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, kv[0])
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, cell, kv[1])
	}
	_ = f.SetColWidth(sheet, "A", "B", 32)

	const discSheet = "Disciplinas"
	if _, err := f.NewSheet(discSheet); err != nil {
		return nil, fmt.Errorf("create disciplinas sheet: %w", err)
	}
	headers := []string{"disciplina", "questoes", "acertos", "media", "tempo_min", "progresso_pct", "ultima_atividade"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(discSheet, cell, h)
	}
	for i, d := range stats.DisciplineStats {
		row := i + 2
		values := []any{
			d.Disciplina,
			d.TotalQuestions,
			d.CorrectAnswers,
			d.AverageScore,
			d.StudyTime,
			d.ProgressPercentage,
			d.LastActivity.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(discSheet, cell, v)
		}
	}
	_ = f.SetColWidth(discSheet, "A", "G", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
