package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const identityKey = "identity"

var errNoSecret = errors.New("identity secret is not configured")

// identityClaims is the token payload issued by the identity provider.
type identityClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// Identity verifies an optional bearer token and stores the caller's identity
// on the context. Requests without an Authorization header pass through anonymously.
func Identity(secret, issuer string, logger zerolog.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			rejectIdentity(c, logger, errors.New("authorization header is not a bearer token"))
			return
		}

		var claims identityClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
			if secret == "" {
				return nil, errNoSecret
			}
			return []byte(secret), nil
		})
		if err != nil {
			rejectIdentity(c, logger, err)
			return
		}
		if claims.Subject == "" {
			rejectIdentity(c, logger, errors.New("token has no subject"))
			return
		}

		c.Set(identityKey, &model.Identity{
			ExternalID: claims.Subject,
			Email:      claims.Email,
			FirstName:  claims.GivenName,
			LastName:   claims.FamilyName,
		})
		c.Next()
	}
}

func rejectIdentity(c *gin.Context, logger zerolog.Logger, err error) {
	logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("identity token rejected")
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Error:   model.ErrCodeUnauthorised,
		Message: "invalid identity token",
	})
}

// IdentityFrom returns the verified identity, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *model.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*model.Identity)
	return identity
}
