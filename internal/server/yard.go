// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/pkg/types"
)

// clearAll is the entity id that removes every representation.
const clearAll = "*"

type yardInfo struct {
	XMLName     xml.Name `json:"-" xml:"yard"`
	ID          string   `json:"id" xml:"id,attr"`
	Name        string   `json:"name" xml:"name"`
	Description string   `json:"description,omitempty" xml:"description,omitempty"`
	Count       int      `json:"count" xml:"count"`
}

func (s *Server) yardRoutes(g *gin.RouterGroup) {
	g.GET("", s.yardInfo)
	g.GET("/entity", s.getEntity)
	g.POST("/entity", s.storeEntity)
	g.PUT("/entity", s.updateEntity)
	g.DELETE("/entity", s.removeEntity)
	g.POST("/query", s.queryEntities)
	g.GET("/find", s.findEntities)
}

func (s *Server) yardInfo(c *gin.Context) {
	y := s.deps.Yard
	n, err := y.Count(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, yardInfo{ID: y.ID(), Name: y.Name(), Description: y.Description(), Count: n})
}

func (s *Server) getEntity(c *gin.Context) {
	id := c.Query("id")
	if err := required("id", id); err != nil {
		fail(c, err)
		return
	}
	rep, err := s.deps.Yard.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, rep)
}

// storeEntity stores the posted representation, generating an id when it
// has none.
func (s *Server) storeEntity(c *gin.Context) {
	var rep types.Representation
	if err := bind(c, &rep); err != nil {
		fail(c, err)
		return
	}
	if rep.ID == "" {
		rep.ID = s.deps.Yard.Create("").ID
	}
	if err := s.deps.Yard.Store(c.Request.Context(), &rep); err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusCreated, &rep)
}

func (s *Server) updateEntity(c *gin.Context) {
	var rep types.Representation
	if err := bind(c, &rep); err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Yard.Update(c.Request.Context(), &rep); err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, &rep)
}

func (s *Server) removeEntity(c *gin.Context) {
	id := c.Query("id")
	if err := required("id", id); err != nil {
		fail(c, err)
		return
	}
	var err error
	if id == clearAll {
		err = s.deps.Yard.Clear(c.Request.Context())
	} else {
		err = s.deps.Yard.Remove(c.Request.Context(), id)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) queryEntities(c *gin.Context) {
	var q types.FieldQuery
	if err := bind(c, &q); err != nil {
		fail(c, err)
		return
	}
	result, err := s.deps.Yard.Find(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, result)
}

func (s *Server) findEntities(c *gin.Context) {
	name := c.Query("name")
	if err := required("name", name); err != nil {
		fail(c, err)
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			fail(c, errs.Invalidf("invalid limit %q", l))
			return
		}
		limit = n
	}
	reps, err := s.deps.Yard.FindByName(c.Request.Context(), name, c.Query("field"), c.QueryArray("lang"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, types.QueryResultList{Results: reps})
}
