package echoapi

import (
	"context"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/quiz"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger      core.Logger
		MailSvc     core.EmailService
		UserSvc     *user.Service
		QuizSvc     *quiz.Service
		ScoreSvc    *score.Service
		SettingsSvc *settings.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, shutdown chan os.Signal) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.SettingsSvc, s.opts.ScoreSvc)
	registerQuestionAPI(v1, jwt, s.opts.QuizSvc)
	registerQuizAPI(v1, jwt, s.opts.QuizSvc, s.opts.ScoreSvc, s.opts.SettingsSvc, s.opts.UserSvc, s.opts.MailSvc)
	registerScoreAPI(v1, jwt, s.opts.ScoreSvc, s.opts.SettingsSvc)
	registerSettingsAPI(v1, jwt, s.opts.SettingsSvc)
	registerCertificateAPI(v1, jwt, s.opts.UserSvc, s.opts.ScoreSvc, s.opts.SettingsSvc)
}

// signalShutdown sends a SIGTERM down the shutdown channel to gracefully shut the server down.
func (s *server) signalShutdown() {
	s.shutdown <- os.Interrupt
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
