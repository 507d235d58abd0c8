package api

import (
	"errors"
	"fmt"
	"rebalance/internal/domain"
	"strings"
	"time"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const identityKey = "identity"

// Claims is the part of the auth provider's access token the backend
// relies on. Subject is the opaque identity portfolios are keyed by.
type Claims struct {
	Audience  string  `json:"aud"`
	Email     *string `json:"email"`
	ExpiresAt int64   `json:"exp"`
	IssuedAt  int64   `json:"iat"`
	Issuer    string  `json:"iss"`
	Role      string  `json:"role"`
	SessionID string  `json:"session_id"`
	Subject   string  `json:"sub"`
}

func (c Claims) Valid() error {
	if c.Subject == "" {
		return errors.New("token has no subject")
	}
	if time.Now().UTC().Unix() > c.ExpiresAt {
		return errors.New("jwt is expired")
	}
	return nil
}

func parseAccessToken(jwtStr string, decodeToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(jwtStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(decodeToken), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return claims, nil
}

// identityFromRequest prefers the Cognito identity API Gateway attaches
// when running behind lambda, then a bearer token.
func (m ApiHandler) identityFromRequest(c *gin.Context) (string, error) {
	if gwCtx, ok := core.GetAPIGatewayContextFromContext(c.Request.Context()); ok {
		if id := gwCtx.Identity.CognitoIdentityID; id != "" {
			return id, nil
		}
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("authorization header is not a bearer token")
	}

	claims, err := parseAccessToken(tokenStr, m.JwtDecodeToken)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m ApiHandler) authMiddleware(c *gin.Context) {
	identity, err := m.identityFromRequest(c)
	if err != nil {
		returnErrorJson(&domain.AuthError{Err: err}, c)
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

func getIdentity(c *gin.Context) (string, error) {
	v, ok := c.Get(identityKey)
	if !ok {
		return "", &domain.AuthError{Err: errors.New("must be logged in")}
	}
	identity, ok := v.(string)
	if !ok || identity == "" {
		return "", &domain.AuthError{Err: errors.New("misformatted identity")}
	}
	return identity, nil
}
