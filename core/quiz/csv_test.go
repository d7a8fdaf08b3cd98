package quiz

import (
	"bytes"
	"strings"
	"testing"

	"github.com/trezcool/certquiz/core"
)

const sampleCSV = `id,question,option1,option2,option3,option4,answer,explanation,category,difficulty
99,What should you check first?,Fuel,Brakes,Horn,Tires,1,Brakes come first.,Safety,Basic
100,How fast may you drive indoors?,5 mph,10 mph,15 mph,As fast as needed,0,Walking pace indoors.,Operation,Intermediate
`

func TestService_ImportCSV(t *testing.T) {
	t.Run("append assigns fresh ids", func(t *testing.T) {
		repo := &fakeRepo{questions: []Question{{ID: 7, Text: "existing", Options: []string{"a", "b", "c", "d"}}}}
		svc := NewService(repo)

		count, err := svc.ImportCSV(strings.NewReader(sampleCSV), false)
		if err != nil {
			t.Fatalf("ImportCSV() failed: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
		if len(repo.questions) != 3 {
			t.Fatalf("len = %d, want 3", len(repo.questions))
		}
		// the file's id column (99, 100) is ignored
		if repo.questions[1].ID != 8 || repo.questions[2].ID != 9 {
			t.Errorf("ids = %d, %d, want 8, 9", repo.questions[1].ID, repo.questions[2].ID)
		}
		q := repo.questions[1]
		if q.Text != "What should you check first?" || q.Answer != 1 || q.Category != "Safety" || q.Difficulty != DifficultyBasic {
			t.Errorf("question = %+v", q)
		}
	})

	t.Run("replace discards the collection", func(t *testing.T) {
		repo := &fakeRepo{questions: []Question{{ID: 7, Text: "existing", Options: []string{"a", "b", "c", "d"}}}}
		svc := NewService(repo)

		if _, err := svc.ImportCSV(strings.NewReader(sampleCSV), true); err != nil {
			t.Fatalf("ImportCSV() failed: %v", err)
		}
		if len(repo.questions) != 2 || repo.questions[0].ID != 1 {
			t.Errorf("questions = %+v", repo.questions)
		}
	})

	t.Run("shuffled header order", func(t *testing.T) {
		csv := "question,answer,explanation,option4,option3,option2,option1\nQ?,3,why,D,C,B,A\n"
		repo := &fakeRepo{}
		svc := NewService(repo)

		if _, err := svc.ImportCSV(strings.NewReader(csv), false); err != nil {
			t.Fatalf("ImportCSV() failed: %v", err)
		}
		q := repo.questions[0]
		if q.Options[0] != "A" || q.Options[3] != "D" || q.Answer != 3 {
			t.Errorf("question = %+v", q)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		csv := "question,option1,option2,option3,answer,explanation\nQ?,a,b,c,0,why\n"
		svc := NewService(&fakeRepo{})

		_, err := svc.ImportCSV(strings.NewReader(csv), false)
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("ImportCSV() error = %v, want *core.ValidationError", err)
		}
	})

	t.Run("non-numeric answer", func(t *testing.T) {
		csv := sampleCSV[:strings.Index(sampleCSV, "\n")+1] + "1,Q?,a,b,c,d,two,why,Safety,Basic\n"
		repo := &fakeRepo{}
		svc := NewService(repo)

		_, err := svc.ImportCSV(strings.NewReader(csv), false)
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("ImportCSV() error = %v, want *core.ValidationError", err)
		}
		if len(repo.questions) != 0 {
			t.Errorf("collection mutated on failed import: %+v", repo.questions)
		}
	})

	t.Run("answer out of range", func(t *testing.T) {
		csv := sampleCSV[:strings.Index(sampleCSV, "\n")+1] + "1,Q?,a,b,c,d,4,why,Safety,Basic\n"
		svc := NewService(&fakeRepo{})

		if _, err := svc.ImportCSV(strings.NewReader(csv), false); err == nil {
			t.Error("ImportCSV() expected validation error")
		}
	})
}

func TestService_ExportCSV(t *testing.T) {
	repo := &fakeRepo{questions: []Question{
		{ID: 1, Text: "Q1?", Options: []string{"a", "b", "c", "d"}, Answer: 2, Explanation: "why", Category: "Safety", Difficulty: DifficultyBasic},
	}}
	svc := NewService(repo)

	var buff bytes.Buffer
	if err := svc.ExportCSV(&buff); err != nil {
		t.Fatalf("ExportCSV() failed: %v", err)
	}

	want := "id,question,option1,option2,option3,option4,answer,explanation,category,difficulty\n" +
		"1,Q1?,a,b,c,d,2,why,Safety,Basic\n"
	if buff.String() != want {
		t.Errorf("ExportCSV() = %q, want %q", buff.String(), want)
	}

	// an export round-trips through import
	repo2 := &fakeRepo{}
	svc2 := NewService(repo2)
	count, err := svc2.ImportCSV(&buff, false)
	if err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
	if count != 1 || repo2.questions[0].Text != "Q1?" {
		t.Errorf("round-trip = %+v", repo2.questions)
	}
}
