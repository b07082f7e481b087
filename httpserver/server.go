package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cinelist/errs"
	"cinelist/list"
	"cinelist/movie"
	"cinelist/pkg/config"
	"cinelist/pkg/sentry"
	"cinelist/rating"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var errInvalidToken = errs.Errorf(errs.EUNAUTHORIZED, "missing or invalid access token")

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	MovieService  movie.Service
	ListService   list.Service
	RatingService rating.Service

	JWTSecret string

	auth echo.MiddlewareFunc
}

func Default(cfg *config.Config) *Server {
	s := Server{
		Router:       echo.New(),
		Addr:         ":8080",
		AllowOrigins: []string{"*"},
		JWTSecret:    cfg.Auth.JWTSecret,
	}
	if cfg.Port != 0 {
		s.Addr = fmt.Sprintf(":%d", cfg.Port)
	}
	if origins := splitOrigins(cfg.AllowOrigins); len(origins) > 0 {
		s.AllowOrigins = origins
	}

	s.Router.HideBanner = true
	s.Router.HTTPErrorHandler = customHTTPErrorHandler
	s.Router.Validator = NewValidator()
	s.auth = s.tokenAuth()

	s.RegisterGlobalMiddlewares()
	api := s.Router.Group("/api")

	// PUBLIC
	public := api.Group("")
	s.RegisterPublicRoutes(public)

	// PRIVATE
	private := api.Group("")
	private.Use(s.auth)
	s.RegisterPrivateRoutes(private)

	s.RegisterHealthRoutes()
	s.RegisterSwaggerRoutes()
	return &s
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.AllowOrigins,
		}))
	}
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

func (s *Server) RegisterPublicRoutes(g *echo.Group) {
	s.RegisterPublicMovieRoutes(g)
	s.RegisterPublicRatingRoutes(g)
	s.RegisterPublicListRoutes(g)
}

func (s *Server) RegisterPrivateRoutes(g *echo.Group) {
	s.RegisterPrivateListRoutes(g)
	s.RegisterPrivateRatingRoutes(g)
}

// tokenAuth verifies HS256 bearer tokens. Without a secret every token is
// refused, since an empty HMAC key is one anybody can sign with.
func (s *Server) tokenAuth() echo.MiddlewareFunc {
	if strings.TrimSpace(s.JWTSecret) == "" {
		s.Router.Logger.Warn("no jwt secret configured, private routes refuse every token")
		return func(echo.HandlerFunc) echo.HandlerFunc {
			return func(echo.Context) error {
				return errInvalidToken
			}
		}
	}

	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(s.JWTSecret),
		SigningMethod: "HS256",
		ErrorHandler: func(c echo.Context, err error) error {
			return errInvalidToken
		},
	})
}

// optionalAuth verifies the bearer token when one is sent and lets anonymous
// requests through untouched.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	withToken := s.auth(next)
	return func(c echo.Context) error {
		if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
			return next(c)
		}
		return withToken(c)
	}
}

// customHTTPErrorHandler maps application errors to appropriate HTTP status codes
func customHTTPErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Internal server error"

	// Check if it's an Echo HTTPError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		// Map application error codes to HTTP status codes
		switch errs.ErrorCode(err) {
		case errs.EINVALID:
			code = http.StatusBadRequest
			message = errs.ErrorMessage(err)
		case errs.ENOTFOUND:
			code = http.StatusNotFound
			message = errs.ErrorMessage(err)
		case errs.ECONFLICT:
			code = http.StatusConflict
			message = errs.ErrorMessage(err)
		case errs.EUNAUTHORIZED:
			code = http.StatusUnauthorized
			message = errs.ErrorMessage(err)
		case errs.EFORBIDDEN:
			code = http.StatusForbidden
			message = errs.ErrorMessage(err)
		case errs.ENOTIMPLEMENTED:
			code = http.StatusNotImplemented
			message = errs.ErrorMessage(err)
		}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
		sentry.WithContext(c).
			WithTags(map[string]string{"route": c.Path()}).
			WithContextValues(map[string]sentrygo.Context{
				"route": {
					"method":     c.Request().Method,
					"path":       c.Path(),
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				},
			}).
			Error(err)
	}

	// Don't write response if already committed
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = writeError(c, code, message, "", err)
		}
		if err != nil {
			c.Logger().Error(err)
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
