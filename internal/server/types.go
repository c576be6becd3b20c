package server

import (
	"encoding/json"
	"time"

	"github.com/rezonia/invoice-utils/internal/model"
)

// ListResponse wraps collection responses
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// TemplateItem is one entry of the template listing
type TemplateItem struct {
	Name string `json:"name"`
}

// TemplateRequest is the body of a template upsert
type TemplateRequest struct {
	Name  string            `json:"name" binding:"required"`
	Rules []json.RawMessage `json:"rules" binding:"required"`
}

// InvoiceRequestHeader numbers and dates the requested invoice
type InvoiceRequestHeader struct {
	Number    json.Number `json:"number" binding:"required"`
	Timestamp time.Time   `json:"timestamp"`
}

// InvoiceEntityBank is a party bank account
type InvoiceEntityBank struct {
	IBAN string `json:"iban" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// InvoiceTaxInfo is a party tax registration
type InvoiceTaxInfo struct {
	ID                 string `json:"id" binding:"required"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// InvoiceEntity is the buyer or seller of a request
type InvoiceEntity struct {
	Name          string             `json:"name" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	Bank          *InvoiceEntityBank `json:"bank,omitempty"`
	TaxInfo       *InvoiceTaxInfo    `json:"tax_info" binding:"required"`
	AdminLocation string             `json:"admin_location,omitempty"`
}

// InvoiceRequest is the body of an invoice generation request
type InvoiceRequest struct {
	Header           InvoiceRequestHeader `json:"header"`
	SendMail         bool                 `json:"send_mail"`
	Address          string               `json:"address"`
	RuleTemplateName string               `json:"rule_template_name"`
	Buyer            InvoiceEntity        `json:"buyer"`
	Seller           InvoiceEntity        `json:"seller"`
	Items            []model.InvoicedItem `json:"items" binding:"required"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
