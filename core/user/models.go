package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/trezcool/certquiz/core"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var AllRoles = []string{RoleAdmin, RoleOperator}

var errPasswordMismatch = errors.New("password mismatch")

// User is one account. The backing collection is persisted as a mapping of
// username -> record (see storage/jsondb); the hash never appears in API
// responses.
type User struct {
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Email        string  `json:"email,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"` // core.TimestampLayout
	LastLogin    *string `json:"last_login"`
}

// HashPassword returns the hex sha256 digest of pwd.
// The digest is deliberately unsalted: it must stay byte-compatible with
// user documents written by earlier versions of the application.
func HashPassword(pwd string) string {
	sum := sha256.Sum256([]byte(pwd))
	return hex.EncodeToString(sum[:])
}

func (u *User) SetPassword(pwd string) {
	u.PasswordHash = HashPassword(pwd)
}

func (u *User) CheckPassword(pwd string) error {
	if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(HashPassword(pwd))) == 0 {
		return errPasswordMismatch
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,userrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate() error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleOperator
	}
	return core.Validate.Struct(nu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search string `query:"search"`
	Role   string `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
