package apostila

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("title and url are required")

type Concurso struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Categoria string `json:"categoria"`
	Ano       int    `json:"ano"`
	Banca     string `json:"banca"`
}

type Apostila struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ConcursoID  *string   `json:"concurso_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Concurso carries the denormalized parent-contest fields. The JSON key
	// keeps the plural table name the frontend already consumes.
	Concurso *Concurso `json:"concursos,omitempty"`
}

type CreateInput struct {
	Title       string
	Description string
	URL         string
	ConcursoID  *string
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// List returns study materials, optionally filtered by concurso, each
// enriched with its parent concurso's fields. A failed concurso lookup
// degrades to the unenriched listing rather than failing the request.
func (s *Service) List(ctx context.Context, concursoID string) ([]Apostila, error) {
	query := `
		SELECT id, title, description, url, concurso_id, created_at
		FROM apostilas
	`
	args := []interface{}{}
	if strings.TrimSpace(concursoID) != "" {
		query += ` WHERE concurso_id = $1`
		args = append(args, concursoID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query apostilas: %w", err)
	}
	defer rows.Close()

	out := make([]Apostila, 0)
	for rows.Next() {
		var (
			a          Apostila
			desc       sql.NullString
			concursoID sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Title, &desc, &a.URL, &concursoID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan apostila: %w", err)
		}
		a.Description = desc.String
		if concursoID.Valid {
			v := concursoID.String
			a.ConcursoID = &v
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apostilas: %w", err)
	}

	s.attachConcursos(ctx, out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Apostila, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	if in.Title == "" || in.URL == "" {
		return nil, ErrInvalidInput
	}

	var concursoID interface{}
	if in.ConcursoID != nil && strings.TrimSpace(*in.ConcursoID) != "" {
		concursoID = strings.TrimSpace(*in.ConcursoID)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO apostilas (id, title, description, url, concurso_id, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, title, description, url, concurso_id, created_at
	`, uuid.NewString(), in.Title, in.Description, in.URL, concursoID)

	var (
		a        Apostila
		desc     sql.NullString
		parentID sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Title, &desc, &a.URL, &parentID, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert apostila: %w", err)
	}
	a.Description = desc.String
	if parentID.Valid {
		v := parentID.String
		a.ConcursoID = &v
	}
	return &a, nil
}

func (s *Service) attachConcursos(ctx context.Context, apostilas []Apostila) {
	ids := make([]string, 0)
	seen := map[string]struct{}{}
	for _, a := range apostilas {
		if a.ConcursoID == nil {
			continue
		}
		if _, ok := seen[*a.ConcursoID]; ok {
			continue
		}
		seen[*a.ConcursoID] = struct{}{}
		ids = append(ids, *a.ConcursoID)
	}
	if len(ids) == 0 {
		return
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nome, categoria, ano, banca
		FROM concursos
		WHERE id IN (`+strings.Join(placeholders, ",")+`)
	`, args...)
	if err != nil {
		logListingError("query concursos", err)
		return
	}
	defer rows.Close()

	byID := make(map[string]*Concurso, len(ids))
	for rows.Next() {
		var c Concurso
		if err := rows.Scan(&c.ID, &c.Nome, &c.Categoria, &c.Ano, &c.Banca); err != nil {
			logListingError("scan concurso", err)
			return
		}
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		logListingError("iterate concursos", err)
		return
	}

	for i := range apostilas {
		if apostilas[i].ConcursoID == nil {
			continue
		}
		apostilas[i].Concurso = byID[*apostilas[i].ConcursoID]
	}
}

func logListingError(op string, err error) {
	entry := map[string]any{
		"msg":   "apostila listing degraded",
		"op":    op,
		"error": err.Error(),
	}
	b, _ := json.Marshal(entry)
	log.Printf("%s", string(b))
}
