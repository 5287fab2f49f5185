package provider

import (
	"fmt"
	"regexp"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_/]+$`)

// ValidateName checks a logical parameter name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: Name is required", interfaces.ErrValidation)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: Name %q must match %s", interfaces.ErrValidation, name, namePattern.String())
	}
	return nil
}

// ParseProperties converts a raw property bag into typed Properties.
//
// RefreshOnUpdate accepts a boolean or a string, where only "true" is true.
// Version may be any scalar and is kept as its string form. Unknown keys,
// such as ServiceToken, are ignored. KeyAlias is left empty when absent so
// the controller can apply its configured default.
func ParseProperties(raw map[string]interface{}) (interfaces.Properties, error) {
	var props interfaces.Properties

	name, err := stringProperty(raw, "Name")
	if err != nil {
		return props, err
	}
	if err := ValidateName(name); err != nil {
		return props, err
	}
	props.Name = name

	if props.Description, err = stringProperty(raw, "Description"); err != nil {
		return props, err
	}
	if props.KeyAlias, err = stringProperty(raw, "KeyAlias"); err != nil {
		return props, err
	}

	switch v := raw["RefreshOnUpdate"].(type) {
	case nil:
	case bool:
		props.RefreshOnUpdate = v
	case string:
		props.RefreshOnUpdate = v == "true"
	default:
		return props, fmt.Errorf("%w: RefreshOnUpdate must be a boolean, got %T", interfaces.ErrValidation, v)
	}

	if v, ok := raw["Version"]; ok && v != nil {
		props.Version = fmt.Sprint(v)
	}

	return props, nil
}

func stringProperty(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", interfaces.ErrValidation, key, v)
	}
	return s, nil
}
