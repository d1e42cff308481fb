package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CashierIDHeader identifies the cashier when token auth is disabled
const CashierIDHeader = "X-Cashier-ID"

const cashierKey = "cashier"

// AuthConfig configures cashier authentication
type AuthConfig struct {
	Enabled          bool
	Secret           string
	Issuer           string
	DefaultCashierID uint64
}

// CashierClaims are the claims carried by a cashier bearer token.
// The subject holds the numeric user id.
type CashierClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CashierAuth resolves the cashier for the request. With auth enabled it
// requires an HS256 bearer token; otherwise X-Cashier-ID or the default id is used.
func CashierAuth(cfg AuthConfig, logger coreport.Logger) gin.HandlerFunc {
	if cfg.DefaultCashierID == 0 {
		cfg.DefaultCashierID = 1
	}

	return func(c *gin.Context) {
		var (
			cashier *entity.User
			err     error
		)
		if cfg.Enabled {
			cashier, err = cashierFromToken(c.GetHeader("Authorization"), cfg)
		} else {
			cashier, err = cashierFromHeader(c.GetHeader(CashierIDHeader), cfg.DefaultCashierID)
		}
		if err != nil {
			logger.Warn("Cashier authentication failed", map[string]any{
				"path":       c.Request.URL.Path,
				"request_id": GetRequestID(c),
				"error":      err.Error(),
			})
			c.AbortWithStatusJSON(dto.HTTPStatus(err), dto.NewErrorResponse(err, "Unauthenticated."))
			return
		}

		c.Set(cashierKey, cashier)
		c.Next()
	}
}

// CashierFromContext returns the cashier resolved by CashierAuth
func CashierFromContext(c *gin.Context) *entity.User {
	v, ok := c.Get(cashierKey)
	if !ok {
		return nil
	}
	cashier, _ := v.(*entity.User)
	return cashier
}

// SignCashierToken issues a bearer token for a cashier
func SignCashierToken(cfg AuthConfig, cashier *entity.User, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = strconv.FormatUint(cashier.ID, 10)
	if claims.Issuer == "" {
		claims.Issuer = cfg.Issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CashierClaims{
		Name:             cashier.Name,
		Email:            cashier.Email,
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(cfg.Secret))
}

func cashierFromToken(header string, cfg AuthConfig) (*entity.User, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: missing bearer token", domainerr.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &CashierClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", domainerr.ErrUnauthorized)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", domainerr.ErrUnauthorized)
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", domainerr.ErrUnauthorized)
	}

	cashier, err := entity.NewUser(id, claims.Name, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrUnauthorized, err)
	}
	return cashier, nil
}

func cashierFromHeader(header string, defaultID uint64) (*entity.User, error) {
	id := defaultID
	if header = strings.TrimSpace(header); header != "" {
		parsed, err := strconv.ParseUint(header, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s header", domainerr.ErrUnauthorized, CashierIDHeader)
		}
		id = parsed
	}

	cashier, err := entity.NewUser(id, "", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrUnauthorized, err)
	}
	return cashier, nil
}
