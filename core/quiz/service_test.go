package quiz

import (
	"testing"
)

type fakeRepo struct {
	questions []Question
}

func (r *fakeRepo) LoadQuestions() ([]Question, error) {
	res := make([]Question, len(r.questions))
	copy(res, r.questions)
	return res, nil
}

func (r *fakeRepo) SaveQuestions(questions []Question) error {
	r.questions = questions
	return nil
}

func newQuestion(text, category string) NewQuestion {
	return NewQuestion{
		Text:        text,
		Options:     []string{"a", "b", "c", "d"},
		Answer:      1,
		Explanation: "because",
		Category:    category,
		Difficulty:  DifficultyBasic,
	}
}

func TestService_Create(t *testing.T) {
	svc := NewService(&fakeRepo{})

	q1, err := svc.Create(newQuestion("Q1?", "Safety"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if q1.ID != 1 {
		t.Errorf("ID = %d, want 1", q1.ID)
	}

	q2, err := svc.Create(newQuestion("Q2?", "Safety"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if q2.ID != 2 {
		t.Errorf("ID = %d, want 2", q2.ID)
	}

	// IDs are monotonic, not reused: deleting the max does not recycle it
	if err := svc.Delete(q2.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	// max remaining is 1, so next is 2
	if q3, _ := svc.Create(newQuestion("Q3?", "Safety")); q3.ID != 2 {
		t.Errorf("ID = %d, want 2", q3.ID)
	}
}

func TestService_UpdateDelete(t *testing.T) {
	svc := NewService(&fakeRepo{})
	q, err := svc.Create(newQuestion("Q1?", "Safety"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	nq := newQuestion("Q1 reworded?", "Operation")
	updated, err := svc.Update(q.ID, nq)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.ID != q.ID || updated.Text != "Q1 reworded?" || updated.Category != "Operation" {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err := svc.Update(999, nq); err != ErrNotFound {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(999); err != ErrNotFound {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(q.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(q.ID); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestService_Categories(t *testing.T) {
	repo := &fakeRepo{questions: []Question{
		{ID: 1, Category: "Safety"},
		{ID: 2, Category: "Operation"},
		{ID: 3, Category: "Safety"},
		{ID: 4}, // uncategorized
	}}
	svc := NewService(repo)

	cats, err := svc.Categories()
	if err != nil {
		t.Fatalf("Categories() failed: %v", err)
	}
	want := []string{DefaultCategory, "Operation", "Safety"}
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range cats {
		if cats[i] != want[i] {
			t.Fatalf("Categories() = %v, want %v", cats, want)
		}
	}
}

func TestService_Draw(t *testing.T) {
	repo := &fakeRepo{questions: []Question{
		{ID: 1, Category: "Safety"},
		{ID: 2, Category: "Operation"},
		{ID: 3, Category: "Safety"},
		{ID: 4, Category: "Safety"},
	}}
	svc := NewService(repo)

	// deterministic shuffle for the test: reverse the slice
	defer func(orig func(int, func(i, j int))) { shuffleFunc = orig }(shuffleFunc)
	shuffleFunc = func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}

	t.Run("count limits the draw", func(t *testing.T) {
		drawn, err := svc.Draw(2, "")
		if err != nil {
			t.Fatalf("Draw() failed: %v", err)
		}
		if len(drawn) != 2 || drawn[0].ID != 4 || drawn[1].ID != 3 {
			t.Errorf("Draw() = %+v", drawn)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		drawn, err := svc.Draw(0, "Safety")
		if err != nil {
			t.Fatalf("Draw() failed: %v", err)
		}
		if len(drawn) != 3 {
			t.Fatalf("len = %d, want 3", len(drawn))
		}
		for _, q := range drawn {
			if q.Category != "Safety" {
				t.Errorf("drew %+v", q)
			}
		}
	})

	t.Run("count larger than pool", func(t *testing.T) {
		drawn, err := svc.Draw(10, "Operation")
		if err != nil {
			t.Fatalf("Draw() failed: %v", err)
		}
		if len(drawn) != 1 || drawn[0].ID != 2 {
			t.Errorf("Draw() = %+v", drawn)
		}
	})

	// the backing collection is never reordered by a draw
	if repo.questions[0].ID != 1 || repo.questions[3].ID != 4 {
		t.Errorf("Draw() mutated the collection: %+v", repo.questions)
	}
}

func TestNewQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewQuestion)
		wantErr bool
	}{
		{name: "ok", mutate: func(nq *NewQuestion) {}},
		{name: "no text", mutate: func(nq *NewQuestion) { nq.Text = "" }, wantErr: true},
		{name: "three options", mutate: func(nq *NewQuestion) { nq.Options = nq.Options[:3] }, wantErr: true},
		{name: "empty option", mutate: func(nq *NewQuestion) { nq.Options[2] = "" }, wantErr: true},
		{name: "answer out of range", mutate: func(nq *NewQuestion) { nq.Answer = 4 }, wantErr: true},
		{name: "negative answer", mutate: func(nq *NewQuestion) { nq.Answer = -1 }, wantErr: true},
		{name: "bad difficulty", mutate: func(nq *NewQuestion) { nq.Difficulty = "Expert" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nq := newQuestion("Q?", "Safety")
			tt.mutate(&nq)
			err := nq.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("defaults", func(t *testing.T) {
		nq := NewQuestion{Text: "Q?", Options: []string{"a", "b", "c", "d"}, Answer: 0}
		if err := nq.Validate(); err != nil {
			t.Fatalf("Validate() failed: %v", err)
		}
		if nq.Category != DefaultCategory {
			t.Errorf("Category = %q, want %q", nq.Category, DefaultCategory)
		}
		if nq.Difficulty != DifficultyIntermediate {
			t.Errorf("Difficulty = %q, want %q", nq.Difficulty, DifficultyIntermediate)
		}
	})
}
