package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core/quiz"
)

type questionApi struct {
	svc *quiz.Service
}

func registerQuestionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *quiz.Service) {
	api := questionApi{svc: svc}

	qg := g.Group("/questions", jwt)
	qg.GET("/categories", api.queryCategories)

	// question management is admin-only: the full records expose answers
	ag := qg.Group("", adminMiddleware())
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/export", api.exportCSV)
	ag.POST("/import", api.importCSV)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *questionApi) query(ctx echo.Context) error {
	questions, err := api.svc.QueryAll()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.Categories()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *questionApi) create(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	q, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	id, err := questionID(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.GetByID(id)
	if err != nil {
		if err == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) update(ctx echo.Context) error {
	id, err := questionID(ctx)
	if err != nil {
		return err
	}

	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	q, err := api.svc.Update(id, data)
	if err != nil {
		if err == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) destroy(ctx echo.Context) error {
	id, err := questionID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(id); err != nil {
		if err == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *questionApi) exportCSV(ctx echo.Context) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="questions.csv"`)
	res.WriteHeader(http.StatusOK)
	return api.svc.ExportCSV(res)
}

func (api *questionApi) importCSV(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a csv file upload is required")
	}
	file, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(ctx.QueryParam("replace"))
	count, err := api.svc.ImportCSV(file, replace)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"imported": count})
}

func questionID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
