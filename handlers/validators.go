package handlers

import (
	"sync"

	"lexdraft-backend/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum tags to gin's validator engine:
// assertion_kind, confidence_level, source_type, document_status and
// render_format. Empty values pass; pair with required where needed.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("assertion_kind", enumValidator(func(s string) bool {
			return models.AssertionKind(s).Valid()
		}))
		_ = v.RegisterValidation("confidence_level", enumValidator(func(s string) bool {
			return models.ConfidenceLevel(s).Valid()
		}))
		_ = v.RegisterValidation("source_type", enumValidator(func(s string) bool {
			return models.SourceType(s).Valid()
		}))
		_ = v.RegisterValidation("document_status", enumValidator(func(s string) bool {
			return models.DocumentStatus(s).Valid()
		}))
		_ = v.RegisterValidation("render_format", enumValidator(func(s string) bool {
			return models.RenderFormat(s).Valid()
		}))
	})
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || valid(s)
	}
}
