package handlers

import (
	"fmt"

	"gdpr-tracker/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the enum tags used in dto binding rules
// (priority, taskstatus, userrole) on gin's validator. It is safe to call
// more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"priority": func(fl validator.FieldLevel) bool {
			return models.Priority(fl.Field().String()).IsValid()
		},
		"taskstatus": func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).IsValid()
		},
		"userrole": func(fl validator.FieldLevel) bool {
			return models.UserRole(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
