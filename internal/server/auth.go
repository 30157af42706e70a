// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/stanbol/internal/errs"
)

// StaticToken validates a single shared bearer token. An empty Token
// disables authentication.
type StaticToken struct {
	Token string
}

// Enabled reports whether a token is required.
func (t StaticToken) Enabled() bool { return t.Token != "" }

// Validate reports errs.ErrUnauthorized unless token matches.
func (t StaticToken) Validate(token string) error {
	if subtle.ConstantTimeCompare([]byte(t.Token), []byte(token)) != 1 {
		return errs.ErrUnauthorized
	}
	return nil
}

// requireToken guards mutating requests with the bearer token. Reads are
// always open.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.auth.Enabled() || !mutating(c.Request.Method) {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			fail(c, errs.ErrUnauthorized)
			c.Abort()
			return
		}
		if err := s.auth.Validate(strings.TrimSpace(token)); err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
