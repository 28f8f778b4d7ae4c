package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config; it is bound to
	// the app config by NewServer.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}

	appName            string
	jwtExpirationDelta time.Duration
)

func configureAuth(conf *core.Config) {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
	appName = conf.AppName
	jwtExpirationDelta = conf.Server.JWTExpirationDelta
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	IsStudent   bool   `json:"is_student,omitempty"`   // -> STUDENT PORTAL
	IsProfessor bool   `json:"is_professor,omitempty"` // -> PROFESSOR PORTAL
	IsAdmin     bool   `json:"is_admin,omitempty"`     // -> ADMIN PORTAL
}

func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    appName,
			Subject:   usr.ID,
			Audience:  "Registro",
			ExpiresAt: now.Add(jwtExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:        usr.Name,
		Email:       usr.Email,
		Role:        usr.Role,
		IsStudent:   usr.IsStudent(),
		IsProfessor: usr.IsProfessor(),
		IsAdmin:     usr.IsAdmin(),
	}
}

func authenticate(email, pwd string, svc *user.Service) (*Claims, error) {
	usr, err := svc.Authenticate(email, pwd)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "authenticating")
	}
	return GetUserClaims(usr), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
