package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/notification"
)

var (
	appName         = "TaskBoard"
	secretKey       = []byte("secret")
	expirationDelta = 24 * time.Hour

	// AppJWTConfig is the default JWT auth middleware config.
	AppJWTConfig = middleware.JWTConfig{
		SigningKey:    secretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "identityToken",
		Claims:        new(Claims),
	}
	contextIdentityKey = "identity"
)

// ConfigureAuth wires the JWT settings from config and returns the auth
// middleware to mount on protected groups.
func ConfigureAuth(conf *core.Config) echo.MiddlewareFunc {
	appName = conf.AppName
	secretKey = []byte(conf.SecretKey)
	expirationDelta = conf.Server.JWTExpirationDelta
	AppJWTConfig.SigningKey = secretKey
	return middleware.JWTWithConfig(AppJWTConfig)
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role       identity.Role `json:"role"`
	ExternalID string        `json:"external_id"`
	Name       string        `json:"name,omitempty"`
	Campus     string        `json:"campus,omitempty"`
	Grade      string        `json:"grade,omitempty"`
}

func GetIdentityClaims(idt identity.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    appName,
			Subject:   idt.ID,
			ExpiresAt: now.Add(expirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:       idt.Role,
		ExternalID: idt.ExternalID,
		Name:       idt.Name,
		Campus:     idt.Campus,
		Grade:      idt.Grade,
	}
}

func authenticate(ctx echo.Context, role identity.Role, externalID, pwd string, svc *identity.Service) (*Claims, error) {
	idt, err := svc.VerifyCredentials(ctx.Request().Context(), role, externalID, pwd)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "verifying credentials")
	}
	return GetIdentityClaims(idt), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(AppJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(secretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(AppJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextIdentity resolves the caller's fresh Identity; capability flags
// are read from storage, not from the token.
func getContextIdentity(ctx echo.Context, svc *identity.Service, clms ...Claims) (identity.Identity, error) {
	if idt, ok := ctx.Get(contextIdentityKey).(identity.Identity); ok {
		return idt, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return identity.Identity{}, err
		}
	}

	idt, err := svc.GetByExternalID(ctx.Request().Context(), claims.Role, claims.ExternalID)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "finding identity by external ID")
	}
	ctx.Set(contextIdentityKey, idt)
	return idt, nil
}

func viewerFromClaims(claims Claims) notification.Viewer {
	return notification.Viewer{
		Role:   claims.Role,
		Campus: claims.Campus,
		Grade:  claims.Grade,
	}
}
