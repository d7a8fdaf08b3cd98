package quiz

import (
	"errors"
	"math/rand"
	"sort"
	"time"
)

var (
	ErrNotFound = errors.New("question not found")

	shuffleFunc = rand.New(rand.NewSource(time.Now().UnixNano())).Shuffle // mockable
)

type (
	Repository interface {
		LoadQuestions() ([]Question, error)
		SaveQuestions(questions []Question) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll() ([]Question, error) {
	return svc.repo.LoadQuestions()
}

func (svc *Service) GetByID(id int) (Question, error) {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, ErrNotFound
}

// Create appends a question with the next monotonic ID (max(existing)+1).
func (svc *Service) Create(nq NewQuestion) (Question, error) {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return Question{}, err
	}
	q := Question{
		ID:          nextID(questions),
		Text:        nq.Text,
		Options:     nq.Options,
		Answer:      nq.Answer,
		Explanation: nq.Explanation,
		Category:    nq.Category,
		Difficulty:  nq.Difficulty,
	}
	questions = append(questions, q)
	if err := svc.repo.SaveQuestions(questions); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (svc *Service) Update(id int, nq NewQuestion) (Question, error) {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return Question{}, err
	}
	for i, q := range questions {
		if q.ID == id {
			questions[i] = Question{
				ID:          id,
				Text:        nq.Text,
				Options:     nq.Options,
				Answer:      nq.Answer,
				Explanation: nq.Explanation,
				Category:    nq.Category,
				Difficulty:  nq.Difficulty,
			}
			if err := svc.repo.SaveQuestions(questions); err != nil {
				return Question{}, err
			}
			return questions[i], nil
		}
	}
	return Question{}, ErrNotFound
}

func (svc *Service) Delete(id int) error {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return err
	}
	for i, q := range questions {
		if q.ID == id {
			questions = append(questions[:i], questions[i+1:]...)
			return svc.repo.SaveQuestions(questions)
		}
	}
	return ErrNotFound
}

// Categories returns the distinct categories in use, sorted.
func (svc *Service) Categories() ([]string, error) {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, q := range questions {
		cat := q.Category
		if cat == "" {
			cat = DefaultCategory
		}
		seen[cat] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for cat := range seen {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats, nil
}

// Draw picks up to count random questions, optionally restricted to a
// category. count <= 0 means all matching questions.
func (svc *Service) Draw(count int, category string) ([]Question, error) {
	questions, err := svc.repo.LoadQuestions()
	if err != nil {
		return nil, err
	}

	pool := questions
	if category != "" {
		pool = make([]Question, 0, len(questions))
		for _, q := range questions {
			if q.Category == category {
				pool = append(pool, q)
			}
		}
	}

	drawn := make([]Question, len(pool))
	copy(drawn, pool)
	shuffleFunc(len(drawn), func(i, j int) { drawn[i], drawn[j] = drawn[j], drawn[i] })
	if count > 0 && count < len(drawn) {
		drawn = drawn[:count]
	}
	return drawn, nil
}

func nextID(questions []Question) int {
	max := 0
	for _, q := range questions {
		if q.ID > max {
			max = q.ID
		}
	}
	return max + 1
}
