// Package ingest turns uploaded question files into question records.
//
// CSV schema, one question per row:
//
//	question, option1, option2, option3, option4, correctAnswer(0-3), level
//
// Rows with fewer than seven columns are skipped. An optional header row whose
// first cell is "question" is ignored.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"assessment-engine/internal/domain"
)

const columns = 7

// ParseCSV reads every valid row of r. A row with a malformed answer or an empty
// level fails the whole upload so nothing is half-imported.
func ParseCSV(r io.Reader) ([]domain.QuestionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var questions []domain.QuestionRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpload, err)
		}
		if len(row) < columns {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "question") {
			continue
		}

		q, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidUpload, line, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseRow(row []string) (domain.QuestionRecord, error) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	correct, err := strconv.Atoi(row[5])
	if err != nil {
		return domain.QuestionRecord{}, fmt.Errorf("correct answer %q is not a number", row[5])
	}
	if correct < 0 || correct >= domain.OptionsPerQuestion {
		return domain.QuestionRecord{}, fmt.Errorf("correct answer %d not in [0,%d]", correct, domain.OptionsPerQuestion-1)
	}
	if row[6] == "" {
		return domain.QuestionRecord{}, errors.New("level is empty")
	}
	return domain.QuestionRecord{
		Level:        row[6],
		Text:         row[0],
		Options:      []string{row[1], row[2], row[3], row[4]},
		CorrectIndex: correct,
	}, nil
}
