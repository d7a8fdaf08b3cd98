package jsondb

import "github.com/trezcool/certquiz/core/quiz"

const questionsCollection = "questions"

type questionRepository struct {
	db *DB
}

var _ quiz.Repository = (*questionRepository)(nil)

func NewQuestionRepository(db *DB) quiz.Repository {
	return &questionRepository{db: db}
}

func (r *questionRepository) LoadQuestions() ([]quiz.Question, error) {
	questions := make([]quiz.Question, 0)
	r.db.Read(questionsCollection, &questions)
	return questions, nil
}

func (r *questionRepository) SaveQuestions(questions []quiz.Question) error {
	return r.db.Write(questionsCollection, questions)
}
