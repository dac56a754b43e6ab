package router

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"docscan/internal/auth"
	"docscan/internal/config"
	"docscan/internal/errors"
	"docscan/internal/handler"
	"docscan/internal/logger"
	"docscan/internal/metrics"
	"docscan/internal/service"
)

// multipartOverhead leaves room for boundaries and part headers around the document.
const multipartOverhead = 64 << 10

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Scan      *handler.ScanHandler
	Credit    *handler.CreditHandler
	Analytics *handler.AnalyticsHandler
	Events    *handler.EventsHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authService service.AuthService,
	h Handlers,
) {
	e.HTTPErrorHandler = errorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(metrics.Middleware())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (cfg.MaxDocumentBytes+multipartOverhead)/1024)))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Server is running...")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	// Secured routes (require a live bearer token)
	bearer := []echo.MiddlewareFunc{
		jwtMiddleware(jwtService, "header:"+echo.HeaderAuthorization+":Bearer "),
		requireActiveToken(authService),
	}
	secured := e.Group("", bearer...)
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/user/profile", h.User.Profile)
	secured.POST("/scan", h.Scan.Scan)
	secured.POST("/credits/request", h.Credit.Request)

	admin := e.Group("/admin", append(bearer, requireAdmin)...)
	admin.GET("/credit-requests", h.Credit.List)
	admin.POST("/credit-requests/:id", h.Credit.Resolve)
	admin.GET("/analytics", h.Analytics.Summary)

	// Websocket upgrades cannot carry headers from a browser.
	e.GET("/admin/events", h.Events.Subscribe,
		jwtMiddleware(jwtService, "query:token"),
		requireActiveToken(authService),
		requireAdmin,
	)
}

// jwtMiddleware parses bearer tokens into auth.Claims. A missing token is
// 401, anything unparseable or expired is 403.
func jwtMiddleware(jwtService *auth.JWTService, lookup string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtService.Secret(),
		SigningMethod: echojwt.AlgorithmHS256,
		TokenLookup:   lookup,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return auth.NewClaims()
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if stderrors.As(err, &extractErr) {
				return deny(errors.ErrUnauthorized)
			}
			return deny(errors.ErrInvalidToken)
		},
	})
}

// requireActiveToken rejects tokens revoked by logout.
func requireActiveToken(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := handler.ClaimsFrom(c)
			if err != nil {
				return deny(errors.ErrInvalidToken)
			}
			if authService.IsRevoked(c.Request().Context(), claims.ID) {
				return deny(errors.ErrInvalidToken)
			}
			return next(c)
		}
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := handler.ClaimsFrom(c)
		if err != nil {
			return deny(errors.ErrInvalidToken)
		}
		if !claims.IsAdmin {
			return deny(errors.ErrForbidden)
		}
		return next(c)
	}
}

func deny(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// errorHandler renders every error as an errors.ErrorResponse.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   errors.ErrorResponse
	)
	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		status = echoErr.Code
		switch msg := echoErr.Message.(type) {
		case errors.ErrorResponse:
			body = msg
		case string:
			body = errors.ErrorResponse{Error: msg, Code: errors.CodeForStatus(status)}
		default:
			body = errors.ErrorResponse{Error: http.StatusText(status), Code: errors.CodeForStatus(status)}
		}
	} else {
		httpErr := errors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		body = httpErr.ToErrorResponse()
		if status >= http.StatusInternalServerError {
			logger.Error("unhandled error",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if err := c.JSON(status, body); err != nil {
		logger.Warn("write error response", zap.Error(err))
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return errors.Validation(fe.Field() + " is required")
		}
		return errors.Validation(fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return errors.Validation(err.Error())
}
