// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/ontology"
)

const mimeNTriples = "application/n-triples"

type ontologyForm struct {
	Path        string `form:"path" json:"path" xml:"path"`
	URI         string `form:"uri" json:"uri" xml:"uri"`
	Description string `form:"description" json:"description" xml:"description"`
}

// resourceForm carries the resource references of every ontology write.
type resourceForm struct {
	ClassURI      string `form:"classURI" json:"classURI" xml:"classURI"`
	IndividualURI string `form:"individualURI" json:"individualURI" xml:"individualURI"`
	PropertyURI   string `form:"propertyURI" json:"propertyURI" xml:"propertyURI"`
	ObjectURI     string `form:"objectURI" json:"objectURI" xml:"objectURI"`
	RangeURI      string `form:"rangeURI" json:"rangeURI" xml:"rangeURI"`
	Value         string `form:"value" json:"value" xml:"value"`
	Datatype      string `form:"datatype" json:"datatype" xml:"datatype"`
	Lang          string `form:"lang" json:"lang" xml:"lang"`
}

type references struct {
	XMLName xml.Name `json:"-" xml:"References"`
	URIs    []string `json:"uris" xml:"URI"`
}

type importResult struct {
	XMLName  xml.Name `json:"-" xml:"ImportResult"`
	Ontology string   `json:"ontology" xml:"ontology,attr"`
	Stored   int      `json:"stored" xml:"stored,attr"`
}

// relation binds a form field to the add and remove operations of one
// resource relation.
type relation struct {
	field  func(resourceForm) string
	add    func(ctx context.Context, path, from, to string) error
	remove func(ctx context.Context, path, from, to string) error
}

func required(name, value string) error {
	if value == "" {
		return errs.Invalidf("missing parameter %s", name)
	}
	return nil
}

func (s *Server) ontologyRoutes(g *gin.RouterGroup) {
	st := s.deps.Ontologies
	g.GET("", s.listOntologies)
	g.POST("", s.createOntology)
	g.DELETE("", s.clearOntologies)

	o := g.Group("/:path")
	o.GET("", s.read(func(ctx context.Context, c *gin.Context, path string) (any, error) {
		return st.GetOntology(ctx, path)
	}))
	o.DELETE("", s.deleteOntology)
	o.GET("/triples", s.exportTriples)
	o.POST("/triples", s.importTriples)

	s.classRoutes(o.Group("/classes"))
	s.individualRoutes(o.Group("/individuals"))
	s.propertyRoutes(o.Group("/"+ontology.KindObjectProperty.Collection()), ontology.KindObjectProperty)
	s.propertyRoutes(o.Group("/"+ontology.KindDatatypeProperty.Collection()), ontology.KindDatatypeProperty)
}

// read serves fn under the ontology read lock.
func (s *Server) read(fn func(ctx context.Context, c *gin.Context, path string) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Param("path")
		unlock := s.readLock(path)
		data, err := fn(c.Request.Context(), c, path)
		unlock()
		if err != nil {
			fail(c, err)
			return
		}
		render(c, http.StatusOK, data)
	}
}

// write binds a resourceForm and runs fn under the ontology write lock. A
// nil result answers with status and no body.
func (s *Server) write(status int, fn func(ctx context.Context, c *gin.Context, path string, f resourceForm) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f resourceForm
		if err := bind(c, &f); err != nil {
			fail(c, err)
			return
		}
		path := c.Param("path")
		unlock := s.writeLock(path)
		data, err := fn(c.Request.Context(), c, path, f)
		unlock()
		if err != nil {
			fail(c, err)
			return
		}
		if data == nil {
			c.Status(status)
			return
		}
		render(c, status, data)
	}
}

// relationRoutes registers POST and DELETE for rel under name. param is
// the path parameter holding the source resource.
func (s *Server) relationRoutes(g *gin.RouterGroup, name, param string, rel relation) {
	run := func(op func(ctx context.Context, path, from, to string) error) gin.HandlerFunc {
		return s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, f resourceForm) (any, error) {
			to := rel.field(f)
			if err := required(name+" target", to); err != nil {
				return nil, err
			}
			return nil, op(ctx, path, c.Param(param), to)
		})
	}
	g.POST("/"+name, run(rel.add))
	g.DELETE("/"+name, run(rel.remove))
}

func (s *Server) listOntologies(c *gin.Context) {
	unlock := s.locks.GlobalRead()
	list, err := s.deps.Ontologies.ListOntologies(c.Request.Context())
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, ontology.AdministeredOntologies{Ontologies: list})
}

func (s *Server) createOntology(c *gin.Context) {
	var f ontologyForm
	if err := bind(c, &f); err != nil {
		fail(c, err)
		return
	}
	unlock := s.globalWrite()
	meta, err := s.deps.Ontologies.CreateOntology(c.Request.Context(), f.Path, f.URI, f.Description)
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", meta.Href)
	render(c, http.StatusCreated, meta)
}

func (s *Server) deleteOntology(c *gin.Context) {
	unlock := s.globalWrite()
	err := s.deps.Ontologies.DeleteOntology(c.Request.Context(), c.Param("path"))
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearOntologies(c *gin.Context) {
	unlock := s.globalWrite()
	err := s.deps.Ontologies.ClearAll(c.Request.Context())
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportTriples(c *gin.Context) {
	path := c.Param("path")
	var buf bytes.Buffer
	unlock := s.readLock(path)
	_, err := s.deps.Ontologies.ExportTriples(c.Request.Context(), path, &buf)
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, mimeNTriples, buf.Bytes())
}

func (s *Server) importTriples(c *gin.Context) {
	path := c.Param("path")
	unlock := s.writeLock(path)
	n, err := s.deps.Ontologies.ImportTriples(c.Request.Context(), path, c.Request.Body)
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	render(c, http.StatusOK, importResult{Ontology: path, Stored: n})
}

func (s *Server) classRoutes(g *gin.RouterGroup) {
	st := s.deps.Ontologies
	g.GET("", s.read(func(ctx context.Context, _ *gin.Context, path string) (any, error) {
		return st.ListClasses(ctx, path)
	}))
	g.POST("", s.write(http.StatusCreated, func(ctx context.Context, _ *gin.Context, path string, f resourceForm) (any, error) {
		if err := required("classURI", f.ClassURI); err != nil {
			return nil, err
		}
		return st.CreateClass(ctx, path, f.ClassURI)
	}))

	one := g.Group("/:class")
	one.GET("", s.read(func(ctx context.Context, c *gin.Context, path string) (any, error) {
		return st.GetClassContext(ctx, path, c.Param("class"))
	}))
	one.DELETE("", s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, _ resourceForm) (any, error) {
		return nil, st.DeleteClass(ctx, path, c.Param("class"))
	}))
	one.GET("/subsumers", s.read(func(ctx context.Context, c *gin.Context, path string) (any, error) {
		uris, err := st.Subsumers(ctx, path, c.Param("class"))
		return references{URIs: uris}, err
	}))

	classURI := func(f resourceForm) string { return f.ClassURI }
	s.relationRoutes(one, "superClasses", "class", relation{classURI, st.AddSuperClass, st.RemoveSuperClass})
	s.relationRoutes(one, "equivalentClasses", "class", relation{classURI, st.AddEquivalentClass, st.RemoveEquivalentClass})
	s.relationRoutes(one, "disjointClasses", "class", relation{classURI, st.AddDisjointClass, st.RemoveDisjointClass})
}

func (s *Server) individualRoutes(g *gin.RouterGroup) {
	st := s.deps.Ontologies
	g.GET("", s.read(func(ctx context.Context, _ *gin.Context, path string) (any, error) {
		return st.ListIndividuals(ctx, path)
	}))
	g.POST("", s.write(http.StatusCreated, func(ctx context.Context, _ *gin.Context, path string, f resourceForm) (any, error) {
		if err := required("individualURI", f.IndividualURI); err != nil {
			return nil, err
		}
		if err := required("classURI", f.ClassURI); err != nil {
			return nil, err
		}
		return st.CreateIndividual(ctx, path, f.IndividualURI, f.ClassURI)
	}))

	one := g.Group("/:individual")
	one.GET("", s.read(func(ctx context.Context, c *gin.Context, path string) (any, error) {
		return st.GetIndividualContext(ctx, path, c.Param("individual"))
	}))
	one.DELETE("", s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, _ resourceForm) (any, error) {
		return nil, st.DeleteIndividual(ctx, path, c.Param("individual"))
	}))

	s.relationRoutes(one, "types", "individual", relation{
		func(f resourceForm) string { return f.ClassURI }, st.AddType, st.RemoveType,
	})

	one.POST("/propertyAssertions", s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, f resourceForm) (any, error) {
		if err := required("propertyURI", f.PropertyURI); err != nil {
			return nil, err
		}
		individual := c.Param("individual")
		switch {
		case f.ObjectURI != "" && f.Value != "":
			return nil, errs.Invalidf("objectURI and value are mutually exclusive")
		case f.ObjectURI != "":
			return nil, st.AssertObjectProperty(ctx, path, individual, f.PropertyURI, f.ObjectURI)
		case f.Value != "":
			return nil, st.AssertDataProperty(ctx, path, individual, f.PropertyURI, f.literal())
		}
		return nil, errs.Invalidf("missing parameter objectURI or value")
	}))
	one.DELETE("/propertyAssertions", s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, f resourceForm) (any, error) {
		if err := required("propertyURI", f.PropertyURI); err != nil {
			return nil, err
		}
		value := f.literal()
		if f.ObjectURI != "" {
			value = ontology.Literal{Value: f.ObjectURI}
		}
		if err := required("objectURI or value", value.Value); err != nil {
			return nil, err
		}
		return nil, st.RemovePropertyAssertion(ctx, path, c.Param("individual"), f.PropertyURI, value)
	}))
}

func (f resourceForm) literal() ontology.Literal {
	return ontology.Literal{Value: f.Value, Datatype: f.Datatype, Lang: f.Lang}
}

func (s *Server) propertyRoutes(g *gin.RouterGroup, kind ontology.Kind) {
	st := s.deps.Ontologies
	g.GET("", s.read(func(ctx context.Context, _ *gin.Context, path string) (any, error) {
		return st.ListProperties(ctx, path, kind)
	}))
	g.POST("", s.write(http.StatusCreated, func(ctx context.Context, _ *gin.Context, path string, f resourceForm) (any, error) {
		if err := required("propertyURI", f.PropertyURI); err != nil {
			return nil, err
		}
		return st.CreateProperty(ctx, path, kind, f.PropertyURI)
	}))

	one := g.Group("/:property")
	one.GET("", s.read(func(ctx context.Context, c *gin.Context, path string) (any, error) {
		return st.GetPropertyContext(ctx, path, kind, c.Param("property"))
	}))
	one.DELETE("", s.write(http.StatusNoContent, func(ctx context.Context, c *gin.Context, path string, _ resourceForm) (any, error) {
		return nil, st.DeleteProperty(ctx, path, kind, c.Param("property"))
	}))
	one.PUT("/characteristics", func(c *gin.Context) {
		var ch ontology.Characteristics
		if err := bind(c, &ch); err != nil {
			fail(c, err)
			return
		}
		path := c.Param("path")
		unlock := s.writeLock(path)
		err := st.SetCharacteristics(c.Request.Context(), path, kind, c.Param("property"), ch)
		unlock()
		if err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	withKind := func(op func(ctx context.Context, path string, kind ontology.Kind, property, other string) error) func(ctx context.Context, path, from, to string) error {
		return func(ctx context.Context, path, from, to string) error {
			return op(ctx, path, kind, from, to)
		}
	}
	classURI := func(f resourceForm) string { return f.ClassURI }
	rangeURI := func(f resourceForm) string {
		if f.RangeURI != "" {
			return f.RangeURI
		}
		if f.Datatype != "" {
			return f.Datatype
		}
		return f.ClassURI
	}
	s.relationRoutes(one, "domains", "property", relation{classURI, withKind(st.AddDomain), withKind(st.RemoveDomain)})
	s.relationRoutes(one, "ranges", "property", relation{rangeURI, withKind(st.AddRange), withKind(st.RemoveRange)})
	s.relationRoutes(one, "superProperties", "property", relation{
		func(f resourceForm) string { return f.PropertyURI },
		withKind(st.AddSuperProperty), withKind(st.RemoveSuperProperty),
	})
}
