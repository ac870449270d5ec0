package core

import (
	"errors"
	"testing"
)

func validStatute() Statute {
	return Statute{
		ID:     "tax-101",
		Title:  "Income Tax Threshold",
		Effect: Effect{Kind: "obligation", Description: "File an annual income return"},
		Preconditions: []Precondition{
			{Kind: "income", Expression: "income > 10000"},
		},
	}
}

func TestStatute_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(s *Statute)
		wantFields []string
	}{
		{
			name:   "valid statute",
			mutate: func(s *Statute) {},
		},
		{
			name:   "valid statute without preconditions",
			mutate: func(s *Statute) { s.Preconditions = nil },
		},
		{
			name:       "empty id",
			mutate:     func(s *Statute) { s.ID = "" },
			wantFields: []string{"id"},
		},
		{
			name:       "id with whitespace",
			mutate:     func(s *Statute) { s.ID = "tax 101" },
			wantFields: []string{"id"},
		},
		{
			name:       "blank title",
			mutate:     func(s *Statute) { s.Title = "   " },
			wantFields: []string{"title"},
		},
		{
			name:       "missing effect description",
			mutate:     func(s *Statute) { s.Effect.Description = "" },
			wantFields: []string{"effect.description"},
		},
		{
			name: "multiple problems are all reported",
			mutate: func(s *Statute) {
				s.Title = ""
				s.Preconditions = append(s.Preconditions, Precondition{Kind: "age"})
			},
			wantFields: []string{"title", "preconditions[1].expression"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStatute()
			tt.mutate(&s)

			errs := s.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() returned %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Validate()[%d].Field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidationErrors_Is(t *testing.T) {
	s := validStatute()
	s.Title = ""

	var err error = s.Validate()
	if !errors.Is(err, ErrInvalidStatute) {
		t.Errorf("errors.Is(%v, ErrInvalidStatute) = false, want true", err)
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatal("errors.As to ValidationErrors failed")
	}
	if verrs[0].Field != "title" {
		t.Errorf("Field = %q, want title", verrs[0].Field)
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr bool
	}{
		{name: "draft", status: StatusDraft},
		{name: "active", status: StatusActive},
		{name: "repealed", status: StatusRepealed},
		{name: "superseded", status: StatusSuperseded},
		{name: "negative", status: Status(-1), wantErr: true},
		{name: "out of range", status: Status(42), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatus(tt.status)
			if tt.wantErr && !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ValidateStatus() error = %v, want %v", err, ErrInvalidStatus)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateStatus() error = %v, want nil", err)
			}
		})
	}
}
