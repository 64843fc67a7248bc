package model

import (
	"strings"

	"github.com/quantumrocket/quantumrocket/internal/validation"
)

var validate = validation.New()

// Request payloads accept either form posts or JSON bodies.

type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,maxbytes=72"`
}

func (r *SignInRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validate.Struct(r)
}

type SignUpRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,min=8,maxbytes=72"`
	FullName string `json:"full_name" form:"full_name" validate:"max=200"`
}

func (r *SignUpRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	return validate.Struct(r)
}

type UpdateProfileRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email,max=254"`
	FullName     string `json:"full_name" form:"full_name" validate:"max=200"`
	Phone        string `json:"phone" form:"phone" validate:"max=40"`
	ShowPageHelp bool   `json:"show_page_help" form:"show_page_help"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	return validate.Struct(r)
}

type CreateWidgetRequest struct {
	Name        string `json:"widget_name" form:"widget_name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

func (r *CreateWidgetRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validate.Struct(r)
}

// WidgetIDRequest binds the :id path parameter.
type WidgetIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,ulid"`
}

func (r *WidgetIDRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateWidgetRequest struct {
	ID          string `param:"id" json:"-" validate:"required,ulid"`
	Name        string `json:"widget_name" form:"widget_name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

func (r *UpdateWidgetRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validate.Struct(r)
}

// EmptyRequest is the payload of routes that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}
