package quiz

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core"
)

// CSV column layout for question import/export. The four option columns mirror
// the spreadsheet template the original admin tooling shipped.
var csvHeader = []string{"id", "question", "option1", "option2", "option3", "option4", "answer", "explanation", "category", "difficulty"}

var csvRequiredColumns = []string{"question", "option1", "option2", "option3", "option4", "answer", "explanation"}

// ImportCSV parses questions from r and appends them to the collection,
// assigning fresh monotonic IDs (any id column in the file is ignored).
// With replace set, the existing collection is discarded first.
// It returns the number of imported questions.
func (svc *Service) ImportCSV(r io.Reader, replace bool) (int, error) {
	rdr := csv.NewReader(r)
	header, err := rdr.Read()
	if err != nil {
		return 0, errors.Wrap(err, "reading csv header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[core.CleanString(name, true /* lower */)] = i
	}
	var missing []string
	for _, name := range csvRequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, core.NewValidationError(fmt.Errorf("CSV is missing required columns: %v", missing))
	}

	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return 0, err
	}
	if replace {
		questions = nil
	}

	id := nextID(questions)
	var count int
	for {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrap(err, "reading csv record")
		}

		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}
		answer, err := strconv.Atoi(core.CleanString(field("answer")))
		if err != nil {
			return 0, core.NewValidationError(fmt.Errorf("invalid answer %q", field("answer")))
		}

		nq := NewQuestion{
			Text:        field("question"),
			Options:     []string{field("option1"), field("option2"), field("option3"), field("option4")},
			Answer:      answer,
			Explanation: field("explanation"),
			Category:    field("category"),
			Difficulty:  field("difficulty"),
		}
		if err := nq.Validate(); err != nil {
			return 0, err
		}

		questions = append(questions, Question{
			ID:          id,
			Text:        nq.Text,
			Options:     nq.Options,
			Answer:      nq.Answer,
			Explanation: nq.Explanation,
			Category:    nq.Category,
			Difficulty:  nq.Difficulty,
		})
		id++
		count++
	}

	if err := svc.repo.SaveQuestions(questions); err != nil {
		return 0, err
	}
	return count, nil
}

// ExportCSV writes the whole collection to w in the import column layout.
func (svc *Service) ExportCSV(w io.Writer) error {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return err
	}

	wr := csv.NewWriter(w)
	if err := wr.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, q := range questions {
		record := []string{strconv.Itoa(q.ID), q.Text, "", "", "", "", strconv.Itoa(q.Answer), q.Explanation, q.Category, q.Difficulty}
		for i := 0; i < 4 && i < len(q.Options); i++ {
			record[2+i] = q.Options[i]
		}
		if err := wr.Write(record); err != nil {
			return errors.Wrap(err, "writing csv record")
		}
	}
	wr.Flush()
	return wr.Error()
}
