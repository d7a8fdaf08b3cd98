package score

// Trend labels reported by Statistics.RecentTrend.
const (
	TrendImproving     = "Improving"
	TrendDeclining     = "Declining"
	TrendStable        = "Stable"
	TrendNotEnoughData = "Not enough data"
	TrendNoData        = "No data"
)

// CategoryResult is one category's tally within a single attempt.
type CategoryResult struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Attempt is one completed quiz submission and its derived outcome.
// Attempts are append-only: once written they are never mutated, except for
// the lazily stamped CertificateID. Username is a soft foreign key; deleting
// the user leaves its attempts untouched.
type Attempt struct {
	ID         string                    `json:"id"`
	Username   string                    `json:"username"`
	Score      int                       `json:"score"`
	MaxScore   int                       `json:"max_score"`
	Percentage float64                   `json:"percentage"`
	// Passed is evaluated against the passing score in effect at save time.
	// It is a point-in-time snapshot and is never re-evaluated when the
	// setting changes later.
	Passed        bool                      `json:"passed"`
	Timestamp     string                    `json:"timestamp"` // core.TimestampLayout
	TimeTaken     *float64                  `json:"time_taken"`
	Categories    map[string]CategoryResult `json:"categories,omitempty"`
	CertificateID string                    `json:"certificate_id,omitempty"`
}

// Statistics aggregates a (possibly filtered) ledger scan.
type Statistics struct {
	TotalAttempts int     `json:"total_attempts"`
	AvgScore      float64 `json:"avg_score"`
	PassRate      float64 `json:"pass_rate"`
	HighestScore  float64 `json:"highest_score"`
	LowestScore   float64 `json:"lowest_score"`
	RecentTrend   string  `json:"recent_trend"`
}

// CategoryStats accumulates one category's tallies across every attempt.
type CategoryStats struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"percentage"`
}

// Certificate is the result of a certificate-ID lookup.
type Certificate struct {
	Valid    bool    `json:"valid"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Date     string  `json:"date"`
	Passed   bool    `json:"passed"`
}
