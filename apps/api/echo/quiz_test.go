package echoapi

import (
	"net/http"
	"testing"

	"github.com/trezcool/certquiz/core/user"
)

func Test_quizApi_draw(t *testing.T) {
	env := setup(t)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	env.createQuestion(t, "Q1?", "Safety", 1)
	env.createQuestion(t, "Q2?", "Safety", 2)
	env.createQuestion(t, "Q3?", "Operation", 0)

	req, rec := newRequest(http.MethodGet, "/v1/quiz")
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/quiz", getToken(t, operator))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	// answers and explanations must not reach the quiz taker
	var raw struct {
		Questions []map[string]interface{} `json:"questions"`
		TimeLimit int                      `json:"time_limit"`
		Key       string                   `json:"key"`
	}
	decodeBody(t, rec, &raw)
	if len(raw.Questions) != 3 { // fewer than the default count of 10 exist
		t.Fatalf("len = %d, want 3", len(raw.Questions))
	}
	if raw.Key == "" {
		t.Error("no set key issued with the draw")
	}
	for _, q := range raw.Questions {
		if _, ok := q["answer"]; ok {
			t.Errorf("question leaked the answer: %+v", q)
		}
		if _, ok := q["explanation"]; ok {
			t.Errorf("question leaked the explanation: %+v", q)
		}
	}

	// explicit count and category
	req, rec = newAuthRequest(http.MethodGet, "/v1/quiz?count=1&category=Safety", getToken(t, operator))
	env.app.ServeHTTP(rec, req)
	var res QuizResponse
	decodeBody(t, rec, &res)
	if len(res.Questions) != 1 || res.Questions[0].Category != "Safety" {
		t.Errorf("questions = %+v", res.Questions)
	}
	if want := quizSetKey("jdoe", []int{res.Questions[0].ID}); res.Key != want {
		t.Errorf("Key = %q, want %q", res.Key, want)
	}
}

func Test_quizApi_submit(t *testing.T) {
	env := setup(t)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	q1 := env.createQuestion(t, "Q1?", "Safety", 1)
	q2 := env.createQuestion(t, "Q2?", "Safety", 2)
	q3 := env.createQuestion(t, "Q3?", "Operation", 0)

	timeTaken := 42.5
	body := marshalObj(t, QuizSubmission{
		QuestionIDs: []int{q1.ID, q2.ID, q3.ID},
		// q1 right, q2 wrong, q3 unanswered (counts wrong)
		Answers:   map[int]int{q1.ID: 1, q2.ID: 0},
		TimeTaken: &timeTaken,
		Key:       quizSetKey("jdoe", []int{q1.ID, q2.ID, q3.ID}),
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/submit", getToken(t, operator), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	var res QuizResult
	decodeBody(t, rec, &res)
	att := res.Attempt
	if att.Score != 1 || att.MaxScore != 3 {
		t.Errorf("score = %d/%d, want 1/3", att.Score, att.MaxScore)
	}
	if att.Passed {
		t.Error("Passed = true, want false at default 80% threshold")
	}
	if att.Username != "jdoe" {
		t.Errorf("username = %q", att.Username)
	}
	if att.TimeTaken == nil || *att.TimeTaken != timeTaken {
		t.Errorf("TimeTaken = %v", att.TimeTaken)
	}
	// category breakdown is on by default
	if att.Categories["Safety"].Correct != 1 || att.Categories["Safety"].Total != 2 {
		t.Errorf("Safety = %+v", att.Categories["Safety"])
	}
	if att.Categories["Operation"].Total != 1 {
		t.Errorf("Operation = %+v", att.Categories["Operation"])
	}

	// feedback reveals the answers after grading
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(res.Results))
	}
	if !res.Results[0].Correct || res.Results[0].Answer != 1 {
		t.Errorf("results[0] = %+v", res.Results[0])
	}
	if res.Results[2].Selected != nil || res.Results[2].Correct {
		t.Errorf("results[2] = %+v", res.Results[2])
	}

	// the attempt is in the ledger
	attempts, err := env.scoreSvc.ListForUser("jdoe", 0)
	if err != nil {
		t.Fatalf("ListForUser() failed: %v", err)
	}
	if len(attempts) != 1 || attempts[0].ID != att.ID {
		t.Errorf("attempts = %+v", attempts)
	}
}

func Test_quizApi_submit_passing(t *testing.T) {
	env := setup(t)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	q1 := env.createQuestion(t, "Q1?", "Safety", 1)
	q2 := env.createQuestion(t, "Q2?", "Safety", 2)

	body := marshalObj(t, QuizSubmission{
		QuestionIDs: []int{q1.ID, q2.ID},
		Answers:     map[int]int{q1.ID: 1, q2.ID: 2},
		Key:         quizSetKey("jdoe", []int{q1.ID, q2.ID}),
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/submit", getToken(t, operator), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	var res QuizResult
	decodeBody(t, rec, &res)
	if !res.Attempt.Passed || res.Attempt.Percentage != 100 {
		t.Errorf("attempt = %+v", res.Attempt)
	}
	// no certificate email without an email address on file
	if len(env.mailSvc.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(env.mailSvc.sent))
	}
}

func Test_quizApi_submit_certificateEmail(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	usr.Email = "jdoe@test.test"
	if _, err := env.usrRepo.UpdateUser(usr); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	q1 := env.createQuestion(t, "Q1?", "Safety", 1)

	body := marshalObj(t, QuizSubmission{
		QuestionIDs: []int{q1.ID},
		Answers:     map[int]int{q1.ID: 1},
		Key:         quizSetKey("jdoe", []int{q1.ID}),
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/submit", getToken(t, usr), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	if len(env.mailSvc.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(env.mailSvc.sent))
	}
	msg := env.mailSvc.sent[0]
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "certificate.html" {
		t.Errorf("attachments = %+v", msg.Attachments)
	}

	// the certificate ID was stamped on the attempt
	var res QuizResult
	decodeBody(t, rec, &res)
	att, err := env.scoreSvc.GetByID(res.Attempt.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if att.CertificateID == "" {
		t.Error("certificate ID not stamped")
	}
	if cert, err := env.scoreSvc.VerifyCertificate(att.CertificateID); err != nil || !cert.Valid {
		t.Errorf("VerifyCertificate() = %+v, %v", cert, err)
	}
}

func Test_quizApi_submit_badPayload(t *testing.T) {
	env := setup(t)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	tests := []struct {
		name string
		body []byte
	}{
		{name: "no question ids", body: marshalObj(t, QuizSubmission{Answers: map[int]int{1: 0}, Key: quizSetKey("jdoe", nil)})},
		{name: "unknown question id", body: marshalObj(t, QuizSubmission{QuestionIDs: []int{999}, Key: quizSetKey("jdoe", []int{999})})},
		{name: "not json", body: []byte("lol")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/submit", getToken(t, operator), tt.body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

// A taker only gets graded on a set the server drew for them: repeating one
// known question, cherry-picking a subset or forging the key must never reach
// the ledger.
func Test_quizApi_submit_unservedSet(t *testing.T) {
	env := setup(t)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	q1 := env.createQuestion(t, "Q1?", "Safety", 1)
	q2 := env.createQuestion(t, "Q2?", "Safety", 2)
	env.createQuestion(t, "Q3?", "Operation", 0)

	tests := []struct {
		name string
		body []byte
	}{
		{name: "repeated question", body: marshalObj(t, QuizSubmission{
			QuestionIDs: []int{q1.ID, q1.ID, q1.ID},
			Answers:     map[int]int{q1.ID: 1},
			Key:         quizSetKey("jdoe", []int{q1.ID, q1.ID, q1.ID}),
		})},
		{name: "cherry-picked subset", body: marshalObj(t, QuizSubmission{
			QuestionIDs: []int{q1.ID},
			Answers:     map[int]int{q1.ID: 1},
			Key:         quizSetKey("jdoe", []int{q1.ID, q2.ID}),
		})},
		{name: "missing key", body: marshalObj(t, QuizSubmission{
			QuestionIDs: []int{q1.ID},
			Answers:     map[int]int{q1.ID: 1},
		})},
		{name: "garbage key", body: marshalObj(t, QuizSubmission{
			QuestionIDs: []int{q1.ID},
			Answers:     map[int]int{q1.ID: 1},
			Key:         "deadbeef",
		})},
		{name: "someone else's key", body: marshalObj(t, QuizSubmission{
			QuestionIDs: []int{q1.ID},
			Answers:     map[int]int{q1.ID: 1},
			Key:         quizSetKey("amy", []int{q1.ID}),
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/submit", getToken(t, operator), tt.body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}

	if attempts, _ := env.scoreSvc.All(); len(attempts) != 0 {
		t.Errorf("attempts = %+v, want none recorded", attempts)
	}
	if len(env.mailSvc.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(env.mailSvc.sent))
	}
}
