package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/certquiz/core"
)

// Difficulties
const (
	DifficultyBasic        = "Basic"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// DefaultCategory is assumed whenever a question carries no category.
const DefaultCategory = "General"

var AllDifficulties = []string{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced}

// Question is one multiple-choice question. Answer is a 0-based index into
// Options and must reference a valid option.
type Question struct {
	ID          int      `json:"id"`
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
}

// NewQuestion contains information needed to create or replace a Question.
type NewQuestion struct {
	Text        string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"required,len=4,dive,required"`
	Answer      int      `json:"answer" validate:"min=0"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty" validate:"omitempty,difficulty"`
}

func (nq *NewQuestion) Validate() error {
	nq.Text = core.CleanString(nq.Text)
	nq.Category = core.CleanString(nq.Category)
	if nq.Category == "" {
		nq.Category = DefaultCategory
	}
	if nq.Difficulty == "" {
		nq.Difficulty = DifficultyIntermediate
	}
	return core.Validate.Struct(nq)
}

var (
	difficultyTag  = "difficulty"
	difficultyText = "difficulty must be one of: Basic, Intermediate, Advanced"

	answerRangeTag  = "answerrange"
	answerRangeText = "answer must reference one of the options"
)

func init() {
	_ = core.Validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(difficultyTag, difficultyText)

	core.Validate.RegisterStructValidation(newQuestionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(answerRangeTag, answerRangeText)
}

func difficultyValidation(fl validator.FieldLevel) bool {
	diff := fl.Field().String()
	for _, d := range AllDifficulties {
		if diff == d {
			return true
		}
	}
	return false
}

func newQuestionStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuestion)
	if !ok {
		return
	}
	if nq.Answer < 0 || nq.Answer >= len(nq.Options) {
		sl.ReportError(nq.Answer, "answer", "Answer", answerRangeTag, "")
	}
}
