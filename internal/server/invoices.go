package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/mail"
	"github.com/rezonia/invoice-utils/internal/render"
)

func (s *Server) handleGenerateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid invoice request", Details: err.Error()})
		return
	}
	number, err := strconv.Atoi(req.Header.Number.String())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invoice number must be an integer"})
		return
	}
	if req.Header.Timestamp.IsZero() {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invoice timestamp is required"})
		return
	}
	if req.SendMail && req.Address == "" {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Address was not provided but send_mail is set to True."})
		return
	}

	templateName := s.config.RuleTemplateName
	if req.RuleTemplateName != "" {
		templateName = req.RuleTemplateName
	}
	template, found, err := s.templates.Get(templateName)
	if err != nil {
		s.repoError(c, "get by key", "repo error on get template by name", err)
		return
	}
	if !found {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Rule Template does not exist."})
		return
	}
	rules, err := template.RuleSet()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Rule Template is not valid.", Details: err.Error()})
		return
	}

	eng := engine.New(rules,
		engine.WithLogger(s.log),
		engine.WithRateSource(s.rates),
		engine.WithMetrics(s.metrics),
	)
	inv := eng.Process(c.Request.Context(), number, req.Header.Timestamp, req.Items)

	name := render.FileName(inv)
	content, err := s.renderer.Render(inv)
	if err != nil {
		s.log.Error().Err(err).Str("invoice", name).Msg("render error")
		c.JSON(http.StatusInsufficientStorage, ErrorResponse{Error: "invoice could not be rendered"})
		return
	}
	if _, err := render.Save(s.config.InvoiceDir, name, content); err != nil {
		s.log.Error().Err(err).Str("invoice", name).Msg("store error")
		detail := "Insufficient rights to store invoice"
		if errors.Is(err, render.ErrNoStorage) {
			detail = "No local storage available for invoices"
		}
		c.JSON(http.StatusInsufficientStorage, ErrorResponse{Error: detail})
		return
	}

	if req.SendMail {
		if err := s.sendInvoice(req, number, name, content); err != nil {
			s.log.Error().Err(err).Str("address", req.Address).Msg("mail error")
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "There was a problem sending the email."})
			return
		}
		s.log.Info().Str("address", req.Address).Msg("invoice was sent")
	}

	c.JSON(http.StatusCreated, inv)
}

func (s *Server) sendInvoice(req InvoiceRequest, number int, name string, content []byte) error {
	if s.mailer == nil {
		return errors.New("mail is not configured")
	}
	body, err := mail.RenderBody(mail.BodyData{
		SenderEmail: s.config.SenderEmail,
		SenderName:  req.Seller.Name,
		InvoiceID:   number,
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(mail.Message{
		From:    s.config.SenderEmail,
		To:      req.Address,
		Subject: s.config.MailSubject,
		HTML:    body,
		Attachments: []mail.Attachment{
			{Name: name, ContentType: "application/pdf", Content: content},
		},
	})
}
