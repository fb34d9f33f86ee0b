package ingest

import (
	"errors"
	"strings"
	"testing"

	"assessment-engine/internal/domain"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"question,option1,option2,option3,option4,correctAnswer,level",
		"What is 2 + 2?, 3, 4, 5, 6, 1, L1",
		"too,short,row",
		`"Pick ""b""",a,b,c,d,1,L2`,
	}, "\n")

	qs, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Text != "What is 2 + 2?" || qs[0].Options[1] != "4" || qs[0].CorrectIndex != 1 || qs[0].Level != "L1" {
		t.Fatalf("unexpected first question %+v", qs[0])
	}
	if qs[1].Text != `Pick "b"` || qs[1].Level != "L2" {
		t.Fatalf("unexpected second question %+v", qs[1])
	}
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			t.Fatalf("parsed question invalid: %v", err)
		}
	}
}

func TestParseCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "non numeric answer", input: "q,a,b,c,d,x,L1"},
		{name: "answer out of range", input: "q,a,b,c,d,4,L1"},
		{name: "negative answer", input: "q,a,b,c,d,-1,L1"},
		{name: "empty level", input: "q,a,b,c,d,0, "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			if !errors.Is(err, domain.ErrInvalidUpload) {
				t.Fatalf("expected ErrInvalidUpload, got %v", err)
			}
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	qs, err := ParseCSV(strings.NewReader(""))
	if err != nil || len(qs) != 0 {
		t.Fatalf("expected no questions, got %v %v", qs, err)
	}
}
