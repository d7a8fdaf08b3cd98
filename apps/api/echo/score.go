package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
)

type scoreApi struct {
	svc         *score.Service
	settingsSvc *settings.Service
}

func registerScoreAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *score.Service, settingsSvc *settings.Service) {
	api := scoreApi{svc: svc, settingsSvc: settingsSvc}

	sg := g.Group("/scores", jwt)
	sg.GET("", api.query)
	sg.GET("/statistics", api.statistics)

	admin := adminMiddleware()
	sg.GET("/categories", api.categoryStatistics, admin)
	sg.DELETE("", api.clearAll, admin)
	sg.DELETE("/:username", api.clearForUser, admin)
}

// query lists attempts, most recent first. Operators only see their own;
// admins can pass ?username= for someone else's or ?all=true for everyone's.
func (api *scoreApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if claims.IsAdmin {
		if ctx.QueryParam("all") == "true" {
			attempts, err := api.svc.All()
			if err != nil {
				return err
			}
			return ctx.JSON(http.StatusOK, attempts)
		}
		if uname := ctx.QueryParam("username"); uname != "" {
			return api.listForUser(ctx, uname)
		}
	}
	return api.listForUser(ctx, claims.Subject)
}

func (api *scoreApi) listForUser(ctx echo.Context, username string) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	attempts, err := api.svc.ListForUser(username, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, attempts)
}

// statistics summarizes attempts against the passing score currently in
// effect. Operators get their own rollup; admins can pass ?username= or omit
// it for the global one.
func (api *scoreApi) statistics(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	username := claims.Subject
	if claims.IsAdmin {
		username = ctx.QueryParam("username")
	}

	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	stats, err := api.svc.Statistics(username, s.PassingScore)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *scoreApi) categoryStatistics(ctx echo.Context) error {
	stats, err := api.svc.CategoryStatistics()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *scoreApi) clearAll(ctx echo.Context) error {
	if err := api.svc.ClearAll(); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scoreApi) clearForUser(ctx echo.Context) error {
	if err := api.svc.ClearForUser(ctx.Param("username")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
