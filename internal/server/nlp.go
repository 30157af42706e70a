// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/stanbol/internal/nlp"
)

type tagSetSummary struct {
	Name      string   `json:"name" xml:"name,attr"`
	Languages []string `json:"languages,omitempty" xml:"language"`
	Size      int      `json:"size" xml:"size,attr"`
}

type tagSetList struct {
	XMLName xml.Name        `json:"-" xml:"tagsets"`
	TagSets []tagSetSummary `json:"tagsets" xml:"tagset"`
}

type tagView struct {
	XMLName xml.Name `json:"-" xml:"posTag"`
	nlp.PosTag
	TagSet        string                `json:"tagset" xml:"tagset,attr"`
	AllCategories []nlp.LexicalCategory `json:"all_categories" xml:"inferredCategory"`
}

func (s *Server) nlpRoutes(g *gin.RouterGroup) {
	g.GET("/tagsets", s.listTagSets)
	g.GET("/tagsets/:name", s.getTagSet)
	g.GET("/tagsets/:name/tags/:tag", s.getTag)
}

// listTagSets lists all tag sets, or those usable for ?lang=.
func (s *Server) listTagSets(c *gin.Context) {
	reg := s.deps.TagSets
	var sets []*nlp.TagSet
	if lang := c.Query("lang"); lang != "" {
		sets = reg.ForLanguage(lang)
	} else {
		for _, name := range reg.Names() {
			ts, err := reg.Get(name)
			if err != nil {
				fail(c, err)
				return
			}
			sets = append(sets, ts)
		}
	}

	list := tagSetList{TagSets: make([]tagSetSummary, 0, len(sets))}
	for _, ts := range sets {
		list.TagSets = append(list.TagSets, tagSetSummary{Name: ts.Name, Languages: ts.Languages, Size: ts.Len()})
	}
	render(c, http.StatusOK, list)
}

func (s *Server) getTagSet(c *gin.Context) {
	ts, err := s.deps.TagSets.Get(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, ts.Document())
}

func (s *Server) getTag(c *gin.Context) {
	ts, err := s.deps.TagSets.Get(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	tag, err := ts.Get(c.Param("tag"))
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, tagView{PosTag: tag, TagSet: ts.Name, AllCategories: tag.AllCategories()})
}
