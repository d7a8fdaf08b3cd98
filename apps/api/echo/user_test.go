package echoapi

import (
	"net/http"
	"testing"

	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{name: "ok", body: LoginRequest{Username: "jdoe", Password: "s3cretpwd"}, wantCode: http.StatusOK},
		{name: "wrong password", body: LoginRequest{Username: "jdoe", Password: "nope"}, wantCode: http.StatusBadRequest},
		// unknown usernames look exactly like wrong passwords
		{name: "unknown user", body: LoginRequest{Username: "ghost", Password: "s3cretpwd"}, wantCode: http.StatusBadRequest},
		{name: "missing fields", body: LoginRequest{}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", marshalObj(t, tt.body))
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var res LoginResponse
				decodeBody(t, rec, &res)
				if res.Token == "" {
					t.Error("empty token")
				}
			}
		})
	}
}

func Test_userApi_retrieveSelf(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	req, rec := newRequest(http.MethodGet, "/v1/users/me")
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, usr))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}
	var got user.User
	decodeBody(t, rec, &got)
	if got.Username != "jdoe" {
		t.Errorf("username = %q", got.Username)
	}
	// the password digest never leaves the API
	if rec.Body.String() == "" || got.PasswordHash != "" {
		t.Error("response leaked the password hash")
	}
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	body := marshalObj(t, map[string]string{
		"username":         "newbie",
		"name":             "New Operator",
		"role":             user.RoleAdmin, // must be ignored
		"password":         "v3ry-s3cret",
		"password_confirm": "v3ry-s3cret",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}
	var got user.User
	decodeBody(t, rec, &got)
	if got.Role != user.RoleOperator {
		t.Errorf("role = %q, want operator regardless of payload", got.Role)
	}

	// duplicate username is a field error
	req, rec = newRequest(http.MethodPost, "/v1/users/register", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}

	// self-registration can be disabled at runtime
	s := settings.Defaults()
	if _, err := env.settingsSvc.Set(settingsToUpdate(s, func(us *settings.UpdateSettings) { us.EnableSelfRegistration = false })); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	req, rec = newRequest(http.MethodPost, "/v1/users/register", marshalObj(t, map[string]string{
		"username":         "another",
		"name":             "Someone",
		"password":         "v3ry-s3cret",
		"password_confirm": "v3ry-s3cret",
	}))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rec.Code)
	}
}

// settingsToUpdate converts current settings to the update payload, applying
// mutations.
func settingsToUpdate(s settings.Settings, mutate ...func(*settings.UpdateSettings)) settings.UpdateSettings {
	us := settings.UpdateSettings{
		CompanyName:             s.CompanyName,
		PassingScore:            s.PassingScore,
		CertificateValidityDays: s.CertificateValidityDays,
		EnableSelfRegistration:  s.EnableSelfRegistration,
		DefaultQuizTimeLimit:    s.DefaultQuizTimeLimit,
		DefaultQuizQuestions:    s.DefaultQuizQuestions,
		TrackCategories:         s.TrackCategories,
		RequireResetPassword:    s.RequireResetPassword,
		PasswordExpiryDays:      s.PasswordExpiryDays,
	}
	for _, m := range mutate {
		m(&us)
	}
	return us
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "amy", "Amy Admin", "s3cretpwd", user.RoleAdmin)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	if _, err := env.scoreSvc.Append("jdoe", 8, 10, 80, nil, nil); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if _, err := env.scoreSvc.Append("jdoe", 6, 10, 80, nil, nil); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	// operators may not list accounts
	req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, operator))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}
	var rows []UserWithStats
	decodeBody(t, rec, &rows)
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	// sorted by username: amy, jdoe
	if rows[0].Username != "amy" || rows[0].QuizzesTaken != 0 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Username != "jdoe" || rows[1].QuizzesTaken != 2 || rows[1].AvgScore != 70 {
		t.Errorf("rows[1] = %+v", rows[1])
	}

	// search filter
	req, rec = newAuthRequest(http.MethodGet, "/v1/users?search=doe", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	rows = nil
	decodeBody(t, rec, &rows)
	if len(rows) != 1 || rows[0].Username != "jdoe" {
		t.Errorf("rows = %+v", rows)
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "amy", "Amy Admin", "s3cretpwd", user.RoleAdmin)
	operator := env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	tests := []struct {
		name     string
		username string
		asUser   user.User
		wantCode int
	}{
		{name: "own account", username: "jdoe", asUser: operator, wantCode: http.StatusOK},
		{name: "someone else's account", username: "amy", asUser: operator, wantCode: http.StatusForbidden},
		{name: "admin reads anyone", username: "jdoe", asUser: admin, wantCode: http.StatusOK},
		{name: "admin unknown user", username: "ghost", asUser: admin, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+tt.username, getToken(t, tt.asUser))
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var got user.User
				decodeBody(t, rec, &got)
				if got.Username != tt.username {
					t.Errorf("username = %q, want %q", got.Username, tt.username)
				}
			}
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "amy", "Amy Admin", "s3cretpwd", user.RoleAdmin)
	env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)
	if _, err := env.scoreSvc.Append("jdoe", 8, 10, 80, nil, nil); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	// self-delete is forbidden
	req, rec := newAuthRequest(http.MethodDelete, "/v1/users/amy", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/users/jdoe", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	// history survives the account
	attempts, err := env.scoreSvc.ListForUser("jdoe", 0)
	if err != nil {
		t.Fatalf("ListForUser() failed: %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(attempts))
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/users/jdoe", getToken(t, admin))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}

func Test_userApi_setPassword(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "amy", "Amy Admin", "s3cretpwd", user.RoleAdmin)
	env.createUser(t, "jdoe", "John Doe", "s3cretpwd", user.RoleOperator)

	body := marshalObj(t, SetPasswordRequest{Password: "brand-new-pwd", PasswordConfirm: "brand-new-pwd"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/jdoe/password", getToken(t, admin), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d; body: %s", rec.Code, rec.Body.String())
	}

	if _, err := env.usrSvc.Authenticate("jdoe", "brand-new-pwd"); err != nil {
		t.Errorf("Authenticate() with new password failed: %v", err)
	}
}
