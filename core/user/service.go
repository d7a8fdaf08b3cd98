package user

import (
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/certquiz/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("Username already exists")

	// ErrAuthenticationFailed is returned on both an unknown username and a
	// wrong password so the response cannot be used for username enumeration.
	ErrAuthenticationFailed = errors.New("authentication failed")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckUsernameUniqueness(username string) error
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByUsername(username string) (User, error)
		UpdateUser(usr User) (User, error)
		DeleteUser(username string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, log: log}
}

// Authenticate looks up the user and compares password digests.
// On success it stamps LastLogin; on any failure it returns
// ErrAuthenticationFailed without distinguishing the cause.
func (svc *Service) Authenticate(uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
	if err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}

	lastLogin := core.FormatTimestamp(nowFunc())
	usr.LastLogin = &lastLogin
	if usr, err = svc.repo.UpdateUser(usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

// Register creates a new account. A taken username fails with a
// ValidationError carrying ErrUsernameExists.
func (svc *Service) Register(nu NewUser) (User, error) {
	if err := svc.repo.CheckUsernameUniqueness(nu.Username); err != nil {
		if err == ErrUsernameExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return User{}, err
	}

	usr := User{
		Username:  nu.Username,
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: core.FormatTimestamp(nowFunc()),
	}
	usr.SetPassword(nu.Password)
	return svc.repo.CreateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

// Filter applies an AND of the available QueryFilter fields.
// QueryFilter.Search does a case-insensitive match on Username or Name.
func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	users, err := svc.repo.QueryAllUsers()
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return users, nil
	}

	search := strings.ToLower(filter.Search)
	res := make([]User, 0, len(users))
	for _, usr := range users {
		if search != "" &&
			!strings.Contains(strings.ToLower(usr.Username), search) &&
			!strings.Contains(strings.ToLower(usr.Name), search) {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		res = append(res, usr)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Username < res[j].Username })
	return res, nil
}

// SetPassword replaces a user's password. Used by admins and by the
// password-reset confirmation flow.
func (svc *Service) SetPassword(uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return User{}, err
	}
	usr.SetPassword(pwd)
	return svc.repo.UpdateUser(usr)
}

// Delete removes the account only. Historical attempts keep the username as
// their foreign key; nothing cascades.
func (svc *Service) Delete(uname string) error {
	return svc.repo.DeleteUser(core.CleanString(uname, true /* lower */))
}

// RequestPasswordReset emails a one-time reset token to the account's email
// address. Accounts without an email address are skipped silently: the caller
// learns nothing about whether the username exists.
func (svc *Service) RequestPasswordReset(uname string) error {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	if usr.Email == "" {
		return nil
	}

	token := makeToken(usr)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Username string
			UID      string
			Token    string
		}{usr.Username, EncodeUID(usr), token},
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ConfirmPasswordReset verifies the token and applies the new password.
func (svc *Service) ConfirmPasswordReset(rp ResetUserPassword) (User, error) {
	uname, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken)
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}
	usr.SetPassword(rp.Password)
	return svc.repo.UpdateUser(usr)
}
