package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
)

type userApi struct {
	svc         *user.Service
	settingsSvc *settings.Service
	scoreSvc    *score.Service
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *user.Service,
	settingsSvc *settings.Service,
	scoreSvc *score.Service,
) {
	api := userApi{svc: svc, settingsSvc: settingsSvc, scoreSvc: scoreSvc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/register", api.register)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.GET("/me", api.retrieveSelf)
	ag.POST("", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())

	// detail endpoints; retrieval is open to the account owner
	dg := ag.Group("/:username")
	dg.GET("", api.retrieve, selfOrAdminMiddleware())
	dg.POST("/password", api.setPassword, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Username string `json:"username" validate:"required"`
	}

	SetPasswordRequest struct {
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	}

	// UserWithStats is the admin listing row: the account plus its attempts
	// rollup.
	UserWithStats struct {
		user.User
		QuizzesTaken int     `json:"quizzes_taken"`
		AvgScore     float64 `json:"avg_score"`
	}
)

func (lr *LoginRequest) Validate() error { return core.Validate.Struct(lr) }

func (pr *PasswordResetRequest) Validate() error { return core.Validate.Struct(pr) }

func (sp *SetPasswordRequest) Validate() error { return core.Validate.Struct(sp) }

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// register is the public self-registration endpoint; it only exists when
// enabled in the application settings, and always creates operator accounts.
func (api *userApi) register(ctx echo.Context) error {
	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	if !s.EnableSelfRegistration {
		return errHttpForbidden
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Role = user.RoleOperator
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Register(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// always 200: the response must not reveal whether the username exists
	if err := api.svc.RequestPasswordReset(data.Username); err != nil {
		return errors.Wrap(err, "requesting password reset")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "If the account exists, a reset email has been sent."})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := api.svc.ConfirmPasswordReset(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Password has been reset."})
}

func (api *userApi) retrieveSelf(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// create is the admin endpoint; unlike register it may set any role.
func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Register(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	users, err := api.svc.Filter(filter)
	if err != nil {
		return err
	}

	attempts, err := api.scoreSvc.All()
	if err != nil {
		return err
	}
	taken := make(map[string]int)
	sums := make(map[string]float64)
	for _, att := range attempts {
		taken[att.Username]++
		sums[att.Username] += att.Percentage
	}

	res := make([]UserWithStats, 0, len(users))
	for _, usr := range users {
		row := UserWithStats{User: usr, QuizzesTaken: taken[usr.Username]}
		if row.QuizzesTaken > 0 {
			row.AvgScore = sums[usr.Username] / float64(row.QuizzesTaken)
		}
		res = append(res, row)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByUsername(ctx.Param("username"))
	if err != nil {
		if err == user.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setPassword(ctx echo.Context) error {
	var data SetPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetPasswordRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := api.svc.SetPassword(ctx.Param("username"), data.Password); err != nil {
		if err == user.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroy(ctx echo.Context) error {
	uname := ctx.Param("username")

	// Say No to Suicide! ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Subject == uname {
		return errHttpForbidden
	}

	if err := api.svc.Delete(uname); err != nil {
		if err == user.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	// historical attempts keep the username; nothing cascades
	return ctx.NoContent(http.StatusNoContent)
}
