package jsondb

import "github.com/trezcool/certquiz/core/score"

const scoresCollection = "scores"

// scoreRepository persists the attempts ledger as one ordered JSON array;
// insertion order is chronological (but not guaranteed sorted after
// per-user deletions).
type scoreRepository struct {
	db *DB
}

var _ score.Repository = (*scoreRepository)(nil)

func NewScoreRepository(db *DB) score.Repository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) LoadAttempts() ([]score.Attempt, error) {
	attempts := make([]score.Attempt, 0)
	r.db.Read(scoresCollection, &attempts)
	return attempts, nil
}

func (r *scoreRepository) SaveAttempts(attempts []score.Attempt) error {
	return r.db.Write(scoresCollection, attempts)
}
