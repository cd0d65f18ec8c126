package apostila

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRejectsMissingFields(t *testing.T) {
	// Validation runs before any query, so a nil handle is safe here.
	svc := NewService(nil)

	tests := []struct {
		name  string
		title string
		url   string
	}{
		{name: "missing title", title: "", url: "https://files.example.test/a.pdf"},
		{name: "missing url", title: "Apostila", url: ""},
		{name: "blank title", title: "   ", url: "https://files.example.test/a.pdf"},
		{name: "both missing", title: "", url: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateInput{Title: tc.title, URL: tc.url})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
