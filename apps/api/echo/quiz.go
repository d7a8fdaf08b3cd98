package echoapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/mail"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/quiz"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
	certsvc "github.com/trezcool/certquiz/services/certificate"
)

type quizApi struct {
	svc         *quiz.Service
	scoreSvc    *score.Service
	settingsSvc *settings.Service
	userSvc     *user.Service
	mailSvc     core.EmailService
}

func registerQuizAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *quiz.Service,
	scoreSvc *score.Service,
	settingsSvc *settings.Service,
	userSvc *user.Service,
	mailSvc core.EmailService,
) {
	api := quizApi{svc: svc, scoreSvc: scoreSvc, settingsSvc: settingsSvc, userSvc: userSvc, mailSvc: mailSvc}

	qg := g.Group("/quiz", jwt)
	qg.GET("", api.draw)
	qg.POST("/submit", api.submit)
}

type (
	// QuizQuestion is a question as served to a quiz taker: no answer, no
	// explanation.
	QuizQuestion struct {
		ID         int      `json:"id"`
		Text       string   `json:"question"`
		Options    []string `json:"options"`
		Category   string   `json:"category"`
		Difficulty string   `json:"difficulty"`
	}

	QuizResponse struct {
		Questions []QuizQuestion `json:"questions"`
		TimeLimit int            `json:"time_limit"` // seconds; 0 means none
		// Key signs the served question set; submit requires it back.
		Key string `json:"key"`
	}

	QuizSubmission struct {
		// QuestionIDs is the full set served to the taker; unanswered
		// questions count against the score.
		QuestionIDs []int       `json:"question_ids" validate:"required,min=1"`
		Answers     map[int]int `json:"answers"`
		TimeTaken   *float64    `json:"time_taken"`
		Key         string      `json:"key" validate:"required"`
	}

	QuestionResult struct {
		ID          int    `json:"id"`
		Selected    *int   `json:"selected"`
		Correct     bool   `json:"correct"`
		Answer      int    `json:"answer"`
		Explanation string `json:"explanation"`
	}

	QuizResult struct {
		Attempt score.Attempt    `json:"attempt"`
		Results []QuestionResult `json:"results"`
	}
)

func (qs *QuizSubmission) Validate() error { return core.Validate.Struct(qs) }

// draw serves a fresh randomized question set. Count and time limit default
// from the application settings.
func (api *quizApi) draw(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}

	count := s.DefaultQuizQuestions
	if c, err := strconv.Atoi(ctx.QueryParam("count")); err == nil && c > 0 {
		count = c
	}

	questions, err := api.svc.Draw(count, ctx.QueryParam("category"))
	if err != nil {
		return err
	}

	res := QuizResponse{
		Questions: make([]QuizQuestion, 0, len(questions)),
		TimeLimit: s.DefaultQuizTimeLimit,
	}
	ids := make([]int, 0, len(questions))
	for _, q := range questions {
		res.Questions = append(res.Questions, QuizQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Options:    q.Options,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
		ids = append(ids, q.ID)
	}
	res.Key = quizSetKey(claims.Subject, ids)
	return ctx.JSON(http.StatusOK, res)
}

// submit grades a completed quiz server-side and appends the attempt to the
// ledger.
func (api *quizApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(data.QuestionIDs))
	for _, id := range data.QuestionIDs {
		if _, ok := seen[id]; ok {
			return core.NewValidationError(fmt.Errorf("duplicate question id %d", id))
		}
		seen[id] = struct{}{}
	}
	// the set must be one the server drew for this user; a taker cannot pick
	// their own questions to be graded on
	if !validQuizSetKey(usr.Username, data.QuestionIDs, data.Key) {
		return core.NewValidationError(errors.New("the submitted question set was not issued by the server"))
	}

	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}

	var (
		scored     int
		results    = make([]QuestionResult, 0, len(data.QuestionIDs))
		categories map[string]score.CategoryResult
	)
	if s.TrackCategories {
		categories = make(map[string]score.CategoryResult)
	}

	for _, id := range data.QuestionIDs {
		q, err := api.svc.GetByID(id)
		if err != nil {
			if err == quiz.ErrNotFound {
				return core.NewValidationError(fmt.Errorf("unknown question id %d", id))
			}
			return err
		}

		res := QuestionResult{ID: id, Answer: q.Answer, Explanation: q.Explanation}
		if selected, ok := data.Answers[id]; ok {
			res.Selected = &selected
			res.Correct = selected == q.Answer
		}
		if res.Correct {
			scored++
		}
		results = append(results, res)

		if categories != nil {
			cat := q.Category
			if cat == "" {
				cat = quiz.DefaultCategory
			}
			cr := categories[cat]
			cr.Total++
			if res.Correct {
				cr.Correct++
			}
			categories[cat] = cr
		}
	}

	att, err := api.scoreSvc.Append(usr.Username, scored, len(data.QuestionIDs), s.PassingScore, categories, data.TimeTaken)
	if err != nil {
		return err
	}

	if att.Passed {
		api.sendCertificate(usr, att, s)
	}

	return ctx.JSON(http.StatusCreated, QuizResult{Attempt: att, Results: results})
}

// sendCertificate emails the freshly earned certificate to accounts that have
// an email address. Failures only get logged server-side; the submission
// itself has already been recorded.
func (api *quizApi) sendCertificate(usr user.User, att score.Attempt, s settings.Settings) {
	if usr.Email == "" {
		return
	}

	scoreText := fmt.Sprintf("%.1f", att.Percentage)
	certID := certsvc.NewID(usr.Name, scoreText, att.Timestamp)
	if a, err := api.scoreSvc.AttachCertificate(att.ID, certID); err == nil {
		att = a
	}

	doc, err := certsvc.Generate(certsvc.Data{
		Name:        usr.Name,
		Score:       scoreText,
		Date:        att.Timestamp,
		CertID:      certID,
		CompanyName: s.CompanyName,
	})
	if err != nil {
		return
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Congratulations! You passed",
		BodyStr: fmt.Sprintf(
			"You passed with a score of %s%%. Your certificate (ID: %s) is attached.",
			scoreText, certID,
		),
	}
	if err := msg.Attach(strings.NewReader(doc), "certificate.html", "text/html"); err != nil {
		return
	}
	api.mailSvc.SendMessages(msg)
}

// quizSetKey signs the question set served to a user, keyed on the server
// secret. The signature is order-independent so clients may reorder questions
// freely, but cannot add, drop or repeat them.
func quizSetKey(username string, ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	mac := hmac.New(sha256.New, core.Conf.SecretKey)
	fmt.Fprintf(mac, "%s:%v", username, sorted)
	return hex.EncodeToString(mac.Sum(nil))
}

func validQuizSetKey(username string, ids []int, key string) bool {
	return hmac.Equal([]byte(quizSetKey(username, ids)), []byte(key))
}
