package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct validation tags
// and the cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(errs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Startup mount names must be unique so status output and logs can
	// refer to them unambiguously.
	seen := make(map[string]bool, len(cfg.Filesystems))
	for _, fs := range cfg.Filesystems {
		if seen[fs.Name] {
			return fmt.Errorf("invalid configuration: duplicate filesystem name %q", fs.Name)
		}
		seen[fs.Name] = true
	}

	return nil
}

// formatValidationErrors renders validator errors in a readable form.
func formatValidationErrors(errs validator.ValidationErrors) string {
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("field %s failed %q validation", e.Namespace(), e.Tag())
	}
	return msg
}
