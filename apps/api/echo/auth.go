package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/teacher"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "teacherToken",
		Claims:        new(Claims),
	}
	contextTeacherKey = "teacher"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

func GetTeacherClaims(tchr teacher.Teacher, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(tchr.ID),
			Audience:  "StudSight",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        tchr.Email,
		Role:         tchr.Role,
		IsAdmin:      tchr.IsAdmin(),
	}
}

func authenticate(email, pwd string, svc *teacher.Service) (*Claims, error) {
	tchr, err := svc.Authenticate(email, pwd)
	if err != nil {
		if errors.Cause(err) == teacher.ErrInvalidCredentials {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "authenticating teacher")
	}
	return GetTeacherClaims(tchr), nil
}

// GenerateToken generates a signed JWT token string representing the teacher Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
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

// claimsSubjectID returns the teacher ID carried in the claims, 0 if malformed.
func claimsSubjectID(claims Claims) int {
	id, _ := strconv.Atoi(claims.Subject)
	return id
}

func getContextTeacher(ctx echo.Context, svc *teacher.Service, clms ...Claims) (teacher.Teacher, error) {
	if tchr, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
		return tchr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
		}
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return teacher.Teacher{}, errUnauthorized
	}
	tchr, err := svc.GetByID(id)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	ctx.Set(contextTeacherKey, tchr)
	return tchr, nil
}

func refreshToken(ctx echo.Context, svc *teacher.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	tchr, err := getContextTeacher(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context teacher")
	}

	// check if account is still active
	if !tchr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetTeacherClaims(tchr, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
