package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Logger records study-activity events. Emission is fire and forget: a
// failed write is logged and dropped, never surfaced to the caller.
type Logger interface {
	LogSimuladoComplete(ctx context.Context, userID, simuladoID string, score float64, timeTakenMinutes int)
	LogQuestaoComplete(ctx context.Context, userID, questoesSemanaID string, score float64)
}

// DBLogger appends events to the audit_log table.
type DBLogger struct {
	db *sql.DB
}

func NewDBLogger(db *sql.DB) *DBLogger {
	return &DBLogger{db: db}
}

func (l *DBLogger) LogSimuladoComplete(ctx context.Context, userID, simuladoID string, score float64, timeTakenMinutes int) {
	l.insert(ctx, userID, "simulado_complete", map[string]any{
		"simulado_id":        simuladoID,
		"score":              score,
		"time_taken_minutes": timeTakenMinutes,
	})
}

func (l *DBLogger) LogQuestaoComplete(ctx context.Context, userID, questoesSemanaID string, score float64) {
	l.insert(ctx, userID, "questoes_semanais_complete", map[string]any{
		"questoes_semanais_id": questoesSemanaID,
		"score":                score,
	})
}

func (l *DBLogger) insert(ctx context.Context, userID, eventType string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logAuditError(eventType, userID, err)
		return
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
	`, uuid.NewString(), userID, eventType, body)
	if err != nil {
		logAuditError(eventType, userID, err)
	}
}

// NopLogger discards all events. Used in tests.
type NopLogger struct{}

func (NopLogger) LogSimuladoComplete(context.Context, string, string, float64, int) {}

func (NopLogger) LogQuestaoComplete(context.Context, string, string, float64) {}

func logAuditError(eventType, userID string, err error) {
	entry := map[string]any{
		"msg":        "audit log error",
		"event_type": eventType,
		"user_id":    userID,
		"error":      err.Error(),
	}
	b, _ := json.Marshal(entry)
	log.Printf("%s", string(b))
}
