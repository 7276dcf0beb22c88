package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/smartcommits/internal/redact"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv returns the environment variable holding the provider's key.
func APIKeyEnv(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// APIKey returns the configured provider's key from the environment the
// loader populated. The key itself never appears in the returned error.
func (l *Loaded) APIKey() (string, error) {
	name := APIKeyEnv(l.Config.API.Provider)
	key := l.getenv(name)
	if key == "" {
		return "", secerr.New(secerr.CategoryInvalidInput, name+" is not set")
	}
	if !validate.APIKey(key) {
		return "", secerr.New(secerr.CategoryInvalidInput, name+" has an invalid format")
	}
	return key, nil
}

func (l *Loaded) getenv(key string) string {
	if l.env != nil {
		if v := l.env.Getenv(key); v != "" {
			return v
		}
	}
	return os.Getenv(key)
}

// Display returns the merged configuration with the API key masked, for
// printing.
func (l *Loaded) Display() map[string]any {
	out := Merge(l.Raw, nil)
	api, _ := out["api"].(map[string]any)
	api = Merge(api, nil)
	api["model"] = l.Config.Model()
	if key := l.getenv(APIKeyEnv(l.Config.API.Provider)); key != "" {
		api["api_key"] = redact.Mask(key, 4)
	} else {
		api["api_key"] = "(not set)"
	}
	out["api"] = api
	return out
}

// SetField sets the value at a dotted "section.key" path in m. The value
// is parsed as a YAML scalar, so "50" becomes an integer and "true" a
// boolean. Intermediate mappings are created as needed.
func SetField(m map[string]any, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return secerr.New(secerr.CategoryInvalidInput, "invalid configuration key")
		}
	}
	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return secerr.Wrap(secerr.CategoryInvalidInput, "invalid configuration value", err)
	}
	switch parsed.(type) {
	case map[string]any, []any:
		return secerr.New(secerr.CategoryInvalidInput, "configuration value must be a scalar")
	}

	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = parsed
	return nil
}

// WriteDefault writes the default configuration to root/.commitgen.yml,
// refusing to overwrite an existing file.
func WriteDefault(root string) (validate.Path, error) {
	path, err := validate.FilePath(root, FileName)
	if err != nil {
		return validate.Path{}, err
	}
	if path.Exists() {
		return path, secerr.New(secerr.CategoryIO, "configuration file already exists")
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return validate.Path{}, secerr.Wrap(secerr.CategoryInternal, "cannot encode configuration", err)
	}
	header := "# smartcommits configuration\n"
	return path, secexec.WriteFile(path.String(), append([]byte(header), data...), 0o644)
}

// Set updates one key in the configuration file at path, validating the
// result against the defaults before writing.
func Set(path validate.Path, key, value string) error {
	user, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := SetField(user, key, value); err != nil {
		return err
	}
	if err := Validate(Merge(DefaultMap(), user)); err != nil {
		return err
	}
	data, err := yaml.Marshal(user)
	if err != nil {
		return secerr.Wrap(secerr.CategoryInternal, "cannot encode configuration", err)
	}
	if err := secexec.WriteFile(path.String(), data, 0o644); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	return nil
}

// String describes the load without any environment values, so a Loaded
// can be logged or printed with %v safely.
func (l *Loaded) String() string {
	return fmt.Sprintf("config(root=%s provider=%s model=%s env=%d)",
		l.Root, l.Config.API.Provider, l.Config.Model(), l.EnvApplied)
}

// GoString keeps %#v from dumping the environment sink.
func (l *Loaded) GoString() string {
	return l.String()
}
