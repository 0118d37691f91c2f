package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the enum rules used in binding tags to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerValidators()
	})
	return registerErr
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(fieldName)

	rules := map[string]validator.Func{
		"ad-category": oneOfEnum(models.AdCategories),
		"ad-level":    oneOfEnum(models.AdLevels),
		"ad-format":   oneOfEnum(models.AdFormats),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// fieldName reports fields by their json (or form) name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// oneOfEnum accepts empty values; "required" handles presence.
func oneOfEnum[T ~string](values []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return lo.Contains(values, T(s))
	}
}

// bindError turns a ShouldBind error into a validation AppError with per-field details.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
		return apperrors.ErrValidation.WithDetails(details)
	}
	return apperrors.ErrValidation.WithMessage("Malformed request").WithError(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "ad-category", "ad-level", "ad-format":
		return "unknown value"
	}
	return "failed on " + fe.Tag()
}
