package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core/settings"
)

type settingsApi struct {
	svc *settings.Service
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *settings.Service) {
	api := settingsApi{svc: svc}

	sg := g.Group("/settings", jwt)
	sg.GET("/me", api.forUser)
	sg.PUT("/me", api.setForUser)

	ag := sg.Group("", adminMiddleware())
	ag.GET("", api.get)
	ag.PUT("", api.set)
}

func (api *settingsApi) get(ctx echo.Context) error {
	s, err := api.svc.Get()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

// set replaces the application settings document wholesale.
func (api *settingsApi) set(ctx echo.Context) error {
	var data settings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Set(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) forUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetForUser(claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

// setForUser stores free-form per-user preferences; the document schema is
// owned by the frontend.
func (api *settingsApi) setForUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data map[string]interface{}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding user settings")
	}
	if err := api.svc.SetForUser(claims.Subject, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, data)
}
