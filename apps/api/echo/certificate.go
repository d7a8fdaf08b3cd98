package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
	certsvc "github.com/trezcool/certquiz/services/certificate"
)

type certificateApi struct {
	userSvc     *user.Service
	scoreSvc    *score.Service
	settingsSvc *settings.Service
}

func registerCertificateAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	userSvc *user.Service,
	scoreSvc *score.Service,
	settingsSvc *settings.Service,
) {
	api := certificateApi{userSvc: userSvc, scoreSvc: scoreSvc, settingsSvc: settingsSvc}

	cg := g.Group("/certificates")
	cg.GET("/verify/:certID", api.verify) // public
	cg.GET("/:attemptID", api.render, jwt)
}

// render returns the certificate document for a passing attempt as HTML. The
// certificate ID is stamped on the attempt the first time it is rendered.
func (api *certificateApi) render(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	att, err := api.scoreSvc.GetByID(ctx.Param("attemptID"))
	if err != nil {
		if err == score.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	if !claims.IsAdmin && att.Username != claims.Subject {
		return errHttpForbidden
	}
	if !att.Passed {
		return core.NewValidationError(errors.New("attempt did not meet the passing score"))
	}

	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	if expired(att.Timestamp, s.CertificateValidityDays) {
		return core.NewValidationError(errors.New("certificate has expired"))
	}

	usr, err := api.userSvc.GetByUsername(att.Username)
	if err != nil {
		return errors.Wrap(err, "finding attempt owner")
	}
	name := usr.Name
	if name == "" {
		name = usr.Username
	}

	scoreText := fmt.Sprintf("%.1f", att.Percentage)
	certID := att.CertificateID
	if certID == "" {
		certID = certsvc.NewID(name, scoreText, att.Timestamp)
	}
	if _, err := api.scoreSvc.AttachCertificate(att.ID, certID); err != nil {
		return err
	}

	doc, err := certsvc.Generate(certsvc.Data{
		Name:        name,
		Score:       scoreText,
		Date:        att.Timestamp,
		CertID:      certID,
		CompanyName: s.CompanyName,
	})
	if err != nil {
		return err
	}
	return ctx.HTML(http.StatusOK, doc)
}

// verify checks a certificate ID against the ledger. Unknown or expired IDs
// still get a 200 with valid=false so the check can be embedded anywhere.
func (api *certificateApi) verify(ctx echo.Context) error {
	cert, err := api.scoreSvc.VerifyCertificate(ctx.Param("certID"))
	if err != nil {
		if err == score.ErrNotFound {
			return ctx.JSON(http.StatusOK, score.Certificate{Valid: false})
		}
		return err
	}

	s, err := api.settingsSvc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	if expired(cert.Date, s.CertificateValidityDays) {
		cert.Valid = false
	}
	return ctx.JSON(http.StatusOK, cert)
}

// expired reports whether a certificate issued at the given timestamp is past
// the configured validity window. validityDays <= 0 means never expires; an
// unparseable timestamp is treated as still valid.
func expired(timestamp string, validityDays int) bool {
	if validityDays <= 0 {
		return false
	}
	issued := core.ParseTimestamp(timestamp)
	if issued.IsZero() {
		return false
	}
	return nowFunc().After(issued.AddDate(0, 0, validityDays))
}

var nowFunc = time.Now // mockable
