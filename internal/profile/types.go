package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environments a profile can target.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
	EnvTest = "test"
)

// maxProfileNameLength follows DNS label constraints.
const maxProfileNameLength = 63

// profileNamePattern defines valid profile name characters.
var profileNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// Profile is a named set of credentials.
type Profile struct {
	// Name is the unique identifier for this profile
	Name string `yaml:"name" validate:"required,max=63,profilename"`
	// Token is the application token sent as a bearer credential
	Token string `yaml:"token" validate:"required"`
	// Environment selects the API the token belongs to
	Environment string `yaml:"environment" validate:"required,oneof=prod dev test"`
}

// Config represents the complete profiles file.
// This is the root structure stored in ~/.config/cloudctl/profiles.yaml.
type Config struct {
	// DefaultProfile is the name of the profile used when none is selected
	DefaultProfile string `yaml:"default-profile,omitempty"`
	// Profiles is the list of all saved profiles
	Profiles []Profile `yaml:"profiles,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("profilename", func(fl validator.FieldLevel) bool {
		return profileNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateProfileName validates a profile name according to the naming rules.
// Profile names must:
//   - Be between 1 and 63 characters
//   - Contain only lowercase letters, numbers, and hyphens
//   - Start and end with an alphanumeric character
func ValidateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if len(name) > maxProfileNameLength {
		return fmt.Errorf("profile name cannot exceed %d characters", maxProfileNameLength)
	}

	if !profileNamePattern.MatchString(name) {
		return fmt.Errorf("profile name must contain only lowercase letters, numbers, and hyphens, and must start and end with an alphanumeric character")
	}

	return nil
}

// Validate checks every field of the profile.
func (p Profile) Validate() error {
	if err := ValidateProfileName(p.Name); err != nil {
		return err
	}

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s, got %q", strings.ToLower(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// GetProfile returns the profile with the given name, or nil if not found.
func (c *Config) GetProfile(name string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// HasProfile returns true if a profile with the given name exists.
func (c *Config) HasProfile(name string) bool {
	return c.GetProfile(name) != nil
}

// AddOrUpdateProfile adds a new profile or replaces an existing one with the same name.
func (c *Config) AddOrUpdateProfile(p Profile) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return
		}
	}
	c.Profiles = append(c.Profiles, p)
}

// RemoveProfile removes the profile with the given name.
// Returns true if the profile was found and removed, false otherwise.
// If the removed profile was the default, DefaultProfile is cleared.
func (c *Config) RemoveProfile(name string) bool {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if c.DefaultProfile == name {
				c.DefaultProfile = ""
			}
			return true
		}
	}
	return false
}

// ResolveDefault returns the default profile: the one named by
// DefaultProfile, or else a profile literally named "default".
func (c *Config) ResolveDefault() *Profile {
	if c.DefaultProfile != "" {
		if p := c.GetProfile(c.DefaultProfile); p != nil {
			return p
		}
	}
	return c.GetProfile("default")
}
