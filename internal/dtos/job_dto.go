package dtos

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JobForm is the add-job form. URL is free text, optional unless the caller asks for it.
type JobForm struct {
	Company     string `json:"company" form:"company" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required"`
	URL         string `json:"url" form:"url"`
	Description string `json:"description,omitempty" form:"description"`
}

func (f *JobForm) Normalize() {
	f.Company = strings.TrimSpace(f.Company)
	f.Title = strings.TrimSpace(f.Title)
	f.URL = strings.TrimSpace(f.URL)
	f.Description = strings.TrimSpace(f.Description)
}

// Validate checks required fields. requireURL matches the dashboard variant that
// insists on a listing link.
func (f *JobForm) Validate(requireURL bool) error {
	f.Normalize()
	if err := structErr(validate.Struct(f)); err != nil {
		return err
	}
	if requireURL && f.URL == "" {
		return &ValidationError{Field: "url", Message: "is required"}
	}
	return nil
}

// Reset clears every field back to the empty string.
func (f *JobForm) Reset() {
	*f = JobForm{}
}

// ResumeForm is the Resume Vault upload form.
type ResumeForm struct {
	Name     string    `form:"name" validate:"required"`
	FileName string    `validate:"-"`
	File     io.Reader `validate:"-"`
}

// Validate requires both a label and an attached file.
func (f *ResumeForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	if err := structErr(validate.Struct(f)); err != nil {
		return err
	}
	if f.File == nil {
		return &ValidationError{Field: "file", Message: "is required"}
	}
	return nil
}

func (f *ResumeForm) Reset() {
	*f = ResumeForm{}
}

// TrackerEntryRequest is the body the Gmail importer posts to the gateway tracker.
type TrackerEntryRequest struct {
	GmailID        string `json:"gmail_id" validate:"required"`
	Company        string `json:"company" validate:"required"`
	Role           string `json:"role" validate:"required"`
	Status         string `json:"status" validate:"required"`
	RequiredSkills string `json:"required_skills"`
}

func (r *TrackerEntryRequest) Validate() error {
	return structErr(validate.Struct(r))
}

// ValidationError is a client-side form error. No request is sent when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Message)
}

// IsValidation reports whether err is a form validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func structErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: "is required"}
}
