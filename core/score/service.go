package score

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"time"

	"github.com/trezcool/certquiz/core"
)

var (
	ErrNotFound = errors.New("attempt not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		LoadAttempts() ([]Attempt, error)
		SaveAttempts(attempts []Attempt) error
	}

	// Service is the score ledger. Every read is a full scan of the attempts
	// collection and every write is a full read-modify-write of the backing
	// document; there is no incremental index and no protection against two
	// writers racing on the same file (last writer wins).
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records a completed quiz. The passing score is an explicit argument
// (loaded from the settings store by the caller); Attempt.Passed snapshots it
// at save time.
func (svc *Service) Append(username string, scored, maxScore int, passingScore float64, categories map[string]CategoryResult, timeTaken *float64) (Attempt, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return Attempt{}, err
	}

	now := nowFunc()
	var percentage float64
	if maxScore > 0 {
		percentage = float64(scored) / float64(maxScore) * 100
	}
	att := Attempt{
		ID:         newAttemptID(username, now),
		Username:   username,
		Score:      scored,
		MaxScore:   maxScore,
		Percentage: percentage,
		Passed:     percentage >= passingScore,
		Timestamp:  core.FormatTimestamp(now),
		TimeTaken:  timeTaken,
		Categories: categories,
	}

	attempts = append(attempts, att)
	if err := svc.repo.SaveAttempts(attempts); err != nil {
		return Attempt{}, err
	}
	return att, nil
}

func (svc *Service) All() ([]Attempt, error) {
	return svc.repo.LoadAttempts()
}

func (svc *Service) GetByID(id string) (Attempt, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return Attempt{}, err
	}
	for _, att := range attempts {
		if att.ID == id {
			return att, nil
		}
	}
	return Attempt{}, ErrNotFound
}

// ListForUser returns the user's attempts, most recent first. limit <= 0
// means all. Sorting compares serialized timestamps lexicographically, which
// is chronological because the layout is fixed-width and zero-padded.
func (svc *Service) ListForUser(username string, limit int) ([]Attempt, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return nil, err
	}

	res := make([]Attempt, 0, len(attempts))
	for _, att := range attempts {
		if att.Username == username {
			res = append(res, att)
		}
	}
	sortByTimestampDesc(res)
	if limit > 0 && limit < len(res) {
		res = res[:limit]
	}
	return res, nil
}

// Statistics scans the ledger, optionally filtered to one user (username "").
// PassRate counts stored percentages against the passing score currently in
// effect, matching the original reporting behavior; individual attempts keep
// their save-time Passed snapshot regardless.
func (svc *Service) Statistics(username string, passingScore float64) (Statistics, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return Statistics{}, err
	}
	if username != "" {
		filtered := make([]Attempt, 0, len(attempts))
		for _, att := range attempts {
			if att.Username == username {
				filtered = append(filtered, att)
			}
		}
		attempts = filtered
	}

	if len(attempts) == 0 {
		return Statistics{RecentTrend: TrendNoData}, nil
	}

	stats := Statistics{
		TotalAttempts: len(attempts),
		HighestScore:  attempts[0].Percentage,
		LowestScore:   attempts[0].Percentage,
	}
	var sum float64
	var passed int
	for _, att := range attempts {
		sum += att.Percentage
		if att.Percentage >= passingScore {
			passed++
		}
		if att.Percentage > stats.HighestScore {
			stats.HighestScore = att.Percentage
		}
		if att.Percentage < stats.LowestScore {
			stats.LowestScore = att.Percentage
		}
	}
	stats.AvgScore = sum / float64(len(attempts))
	stats.PassRate = float64(passed) / float64(len(attempts)) * 100
	stats.RecentTrend = recentTrend(attempts)
	return stats, nil
}

// recentTrend compares the most recent attempt's percentage to the oldest of
// the last 5 (or of however many exist).
func recentTrend(attempts []Attempt) string {
	recent := make([]Attempt, len(attempts))
	copy(recent, attempts)
	sortByTimestampDesc(recent)
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if len(recent) < 2 {
		return TrendNotEnoughData
	}

	newest := recent[0].Percentage
	oldest := recent[len(recent)-1].Percentage
	switch {
	case newest > oldest:
		return TrendImproving
	case newest < oldest:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// CategoryStatistics accumulates per-category tallies across every attempt
// that recorded a category breakdown.
func (svc *Service) CategoryStatistics() (map[string]CategoryStats, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]CategoryStats)
	for _, att := range attempts {
		for cat, res := range att.Categories {
			cs := stats[cat]
			cs.TotalQuestions += res.Total
			cs.CorrectAnswers += res.Correct
			stats[cat] = cs
		}
	}
	for cat, cs := range stats {
		if cs.TotalQuestions > 0 {
			cs.Percentage = float64(cs.CorrectAnswers) / float64(cs.TotalQuestions) * 100
		}
		stats[cat] = cs
	}
	return stats, nil
}

// ClearAll replaces the ledger with the empty set.
func (svc *Service) ClearAll() error {
	return svc.repo.SaveAttempts([]Attempt{})
}

// ClearForUser removes the user's attempts; everyone else's are carried over
// unchanged.
func (svc *Service) ClearForUser(username string) error {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return err
	}
	filtered := make([]Attempt, 0, len(attempts))
	for _, att := range attempts {
		if att.Username != username {
			filtered = append(filtered, att)
		}
	}
	return svc.repo.SaveAttempts(filtered)
}

// AttachCertificate stamps a certificate ID on an attempt the first time its
// certificate is generated. Stamping the same ID again is a no-op.
func (svc *Service) AttachCertificate(attemptID, certID string) (Attempt, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return Attempt{}, err
	}
	for i, att := range attempts {
		if att.ID == attemptID {
			if att.CertificateID == certID {
				return att, nil
			}
			attempts[i].CertificateID = certID
			if err := svc.repo.SaveAttempts(attempts); err != nil {
				return Attempt{}, err
			}
			return attempts[i], nil
		}
	}
	return Attempt{}, ErrNotFound
}

// VerifyCertificate scans the ledger for an attempt carrying certID.
func (svc *Service) VerifyCertificate(certID string) (Certificate, error) {
	attempts, err := svc.repo.LoadAttempts()
	if err != nil {
		return Certificate{}, err
	}
	for _, att := range attempts {
		if att.CertificateID != "" && att.CertificateID == certID {
			return Certificate{
				Valid:    true,
				Username: att.Username,
				Score:    att.Percentage,
				Date:     att.Timestamp,
				Passed:   att.Passed,
			}, nil
		}
	}
	return Certificate{}, ErrNotFound
}

func sortByTimestampDesc(attempts []Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool { return attempts[i].Timestamp > attempts[j].Timestamp })
}

// newAttemptID derives a short unique id from the username and append time.
func newAttemptID(username string, now time.Time) string {
	sum := md5.Sum([]byte(username + "_" + now.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:10]
}
