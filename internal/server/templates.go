package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-utils/internal/store"
)

func (s *Server) repoError(c *gin.Context, operation, detail string, err error) {
	s.log.Error().Err(err).Str("operation", operation).Msg("repo error")
	c.JSON(http.StatusInsufficientStorage, ErrorResponse{Error: detail})
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates, err := s.templates.List()
	if err != nil {
		s.repoError(c, "list", "repo error on list templates", err)
		return
	}

	items := make([]TemplateItem, 0, len(templates))
	for _, t := range templates {
		items = append(items, TemplateItem{Name: t.Name})
	}
	c.JSON(http.StatusOK, ListResponse[TemplateItem]{Count: len(items), Items: items})
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	name := c.Param("name")
	t, found, err := s.templates.Get(name)
	if err != nil {
		s.repoError(c, "get by key", "repo error on get template by name", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "template not found in repo"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	name := c.Param("name")
	deleted, err := s.templates.Delete(name)
	if err != nil {
		s.repoError(c, "delete", "repo error on delete template by name", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "template '" + name + "' not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpsertTemplate(c *gin.Context) {
	name := c.Param("name")

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid template", Details: err.Error()})
		return
	}
	t := store.Template{Name: req.Name, Rules: req.Rules}

	found, err := s.templates.Exists(name)
	if err != nil {
		s.repoError(c, "exists", "repo error on find template by name", err)
		return
	}

	if found {
		current, _, err := s.templates.Get(name)
		if err != nil {
			s.repoError(c, "update", "repo error on update template by name", err)
			return
		}
		if t, err = s.templates.Update(name, t); err != nil {
			s.repoError(c, "update", "repo error on update template by name", err)
			return
		}
		s.log.Info().Str("template", name).Bool("changed", !sameTemplate(current, t)).Msg("template updated")
	} else {
		if t, err = s.templates.Create(t); err != nil {
			s.repoError(c, "create", "repo error on insert template on update", err)
			return
		}
		s.log.Info().Str("template", t.Name).Msg("template created")
	}
	c.JSON(http.StatusAccepted, t)
}

func sameTemplate(a, b store.Template) bool {
	if a.Name != b.Name || len(a.Rules) != len(b.Rules) {
		return false
	}
	for i := range a.Rules {
		var x, y bytes.Buffer
		if json.Compact(&x, a.Rules[i]) != nil || json.Compact(&y, b.Rules[i]) != nil {
			return false
		}
		if !bytes.Equal(x.Bytes(), y.Bytes()) {
			return false
		}
	}
	return true
}
