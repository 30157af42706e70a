// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/lock"
	"github.com/pdiddy/stanbol/internal/observability"
)

var offered = []string{gin.MIMEJSON, gin.MIMEXML, gin.MIMEXML2}

// maxFormBody matches the limit net/http applies to form bodies.
const maxFormBody = 10 << 20

type errorBody struct {
	XMLName xml.Name `json:"-" xml:"error"`
	Error   string   `json:"error" xml:"message"`
}

// render writes data as JSON, or XML when the client asks for it.
func render(c *gin.Context, status int, data any) {
	c.Negotiate(status, gin.Negotiate{Offered: offered, Data: data})
}

// fail maps err onto its HTTP status and renders it.
func fail(c *gin.Context, err error) {
	status := errs.StatusCode(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	render(c, status, errorBody{Error: err.Error()})
}

// bind decodes the request into obj from form, JSON, XML or YAML bodies.
func bind(c *gin.Context, obj any) error {
	if err := parseDeleteForm(c.Request); err != nil {
		return errs.Invalidf("malformed request: %v", err)
	}
	if err := c.ShouldBind(obj); err != nil {
		return errs.Invalidf("malformed request: %v", err)
	}
	return nil
}

// parseDeleteForm merges a form-encoded DELETE body into req.Form.
// net/http only reads form bodies for POST, PUT and PATCH.
func parseDeleteForm(req *http.Request) error {
	if req.Method != http.MethodDelete || req.Body == nil || req.Form != nil {
		return nil
	}
	ct, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if ct != gin.MIMEPOSTForm {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, maxFormBody))
	if err != nil {
		return fmt.Errorf("reading form body: %w", err)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return err
	}
	if err := req.ParseForm(); err != nil {
		return err
	}
	for k, vs := range values {
		req.Form[k] = append(req.Form[k], vs...)
		req.PostForm[k] = append(req.PostForm[k], vs...)
	}
	return nil
}

func (s *Server) readLock(path string) lock.Unlock {
	start := time.Now()
	unlock := s.locks.ReadLock(path)
	observability.RecordLockWait("read", time.Since(start))
	return unlock
}

func (s *Server) writeLock(path string) lock.Unlock {
	start := time.Now()
	unlock := s.locks.WriteLock(path)
	observability.RecordLockWait("write", time.Since(start))
	return unlock
}

func (s *Server) globalWrite() lock.Unlock {
	start := time.Now()
	unlock := s.locks.GlobalWrite()
	observability.RecordLockWait("global", time.Since(start))
	return unlock
}
