package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	lookup := func(fn func(string) (string, bool)) validator.Func {
		return func(fl validator.FieldLevel) bool {
			_, ok := fn(fl.Field().String())
			return ok
		}
	}
	_ = v.RegisterValidation("provider_type", func(fl validator.FieldLevel) bool {
		_, ok := domain.ProviderType(fl.Field().String()).RemoteClass()
		return ok
	})
	_ = v.RegisterValidation("custom_attribute_entity", lookup(domain.CustomAttributeCollection))
	_ = v.RegisterValidation("tag_resource", lookup(domain.TagResourceCollection))
	_ = v.RegisterValidation("policy_entity", lookup(domain.PolicyEntityCollection))
	_ = v.RegisterValidation("policy_resource", lookup(domain.PolicyResourceCollection))
	_ = v.RegisterValidation("monitoring_role", func(fl validator.FieldLevel) bool {
		for _, role := range domain.MonitoringRoles() {
			if role == fl.Field().String() {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("reconcile_kind", func(fl validator.FieldLevel) bool {
		for _, k := range domain.AllKinds() {
			if k.String() == fl.Field().String() {
				return true
			}
		}
		return false
	})

	v.RegisterStructValidation(providerStructLevel, ProviderSpec{})
	return v
}

// providerStructLevel enforces the per-type required fields of a provider
// that is meant to exist.
func providerStructLevel(sl validator.StructLevel) {
	p := sl.Current().Interface().(ProviderSpec)
	if p.State == domain.StateAbsent {
		return
	}
	require := func(value any, field string) {
		switch v := value.(type) {
		case string:
			if v == "" {
				sl.ReportError(v, field, field, "required_for_type", string(p.Type))
			}
		case int:
			if v == 0 {
				sl.ReportError(v, field, field, "required_for_type", string(p.Type))
			}
		}
	}
	switch {
	case p.Type == domain.ProviderOvirt:
		require(p.Hostname, "Hostname")
		require(p.Username, "Username")
		require(p.Password, "Password")
	case p.Type.UsesToken():
		require(p.Hostname, "Hostname")
		require(p.Port, "Port")
		require(p.Token, "Token")
	case p.Type == domain.ProviderAmazon:
		if (p.AccessKeyID == "") != (p.SecretAccessKey == "") {
			sl.ReportError(p.AccessKeyID, "AccessKeyID", "AccessKeyID", "paired_with_secret", "")
		}
	}
}

// Validate applies defaults to the desired document and checks the whole
// configuration.
func Validate(ctx context.Context, cfg *Config) error {
	cfg.Desired.ApplyDefaults()
	err := newValidator().StructCtx(ctx, cfg)
	if err == nil {
		return nil
	}
	return formatValidationError(err, "Configuration validation failed:",
		"Please check your configuration file, desired state document or flags.")
}

// ValidateDesired checks a desired-state document on its own.
func ValidateDesired(ctx context.Context, d *DesiredState) error {
	d.ApplyDefaults()
	err := newValidator().StructCtx(ctx, d)
	if err == nil {
		return nil
	}
	return formatValidationError(err, "Desired state validation failed:",
		"Please check the desired state document.")
}

// allowedValues lists the accepted values of the lookup validations, for
// error messages.
var allowedValues = map[string]func() []string{
	"provider_type":           domain.ProviderTypes,
	"custom_attribute_entity": domain.CustomAttributeEntityTypes,
	"tag_resource":            domain.TaggableResources,
	"policy_entity":           domain.PolicyEntities,
	"policy_resource":         domain.PolicyResources,
	"monitoring_role":         domain.MonitoringRoles,
	"reconcile_kind": func() []string {
		var kinds []string
		for _, k := range domain.AllKinds() {
			kinds = append(kinds, k.String())
		}
		return kinds
	},
}

func formatValidationError(err error, header, suggestion string) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.WrapUserFacing(err, apperrors.CodeConfigValidation, header, suggestion)
	}
	var details strings.Builder
	details.WriteString(header)
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s=%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
		if allowed, ok := allowedValues[fe.Tag()]; ok {
			details.WriteString(fmt.Sprintf("; allowed: %s", strings.Join(allowed(), ", ")))
		}
	}
	return apperrors.NewUserFacing(apperrors.CodeConfigValidation, details.String(), suggestion)
}
