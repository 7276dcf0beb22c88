package config

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/validate"
)

// maxEnvBytes bounds the size of the .env file and of any single line.
const maxEnvBytes = 1 << 20

// EnvSink receives the assignments read from an environment file.
type EnvSink interface {
	Setenv(key, value string) error
	Getenv(key string) string
}

// OSEnv writes to the process environment.
type OSEnv struct{}

func (OSEnv) Setenv(key, value string) error { return os.Setenv(key, value) }
func (OSEnv) Getenv(key string) string       { return os.Getenv(key) }

// MapEnv is an in-memory EnvSink.
type MapEnv map[string]string

func (m MapEnv) Setenv(key, value string) error {
	m[key] = value
	return nil
}

func (m MapEnv) Getenv(key string) string { return m[key] }

// EnvVar is one accepted assignment from an environment file.
type EnvVar struct {
	Key   string
	Value string
}

// ParseEnv reads KEY=value lines. Blank lines, lines starting with '#',
// lines without '=', and keys that are not uppercase identifiers are
// skipped. Values are trimmed of whitespace and surrounding quotes.
func ParseEnv(r io.Reader) ([]EnvVar, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxEnvBytes)

	var vars []EnvVar
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if !validate.EnvKey(key) {
			continue
		}
		vars = append(vars, EnvVar{Key: key, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// LoadEnvFile applies the assignments in path to sink and returns the
// number applied. A missing file applies nothing.
func LoadEnvFile(path validate.Path, sink EnvSink) (int, error) {
	f, err := os.Open(path.String())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, secerr.Wrap(secerr.CategoryEnvFile, "failed to load environment file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, secerr.Wrap(secerr.CategoryEnvFile, "failed to load environment file", err)
	}
	if info.Size() > maxEnvBytes {
		return 0, secerr.New(secerr.CategoryEnvFile, "environment file too large")
	}

	vars, err := ParseEnv(f)
	if err != nil {
		return 0, secerr.Wrap(secerr.CategoryEnvFile, "failed to load environment file", err)
	}
	for _, v := range vars {
		if err := sink.Setenv(v.Key, v.Value); err != nil {
			return 0, secerr.Wrap(secerr.CategoryEnvFile, "failed to apply environment file", err)
		}
	}
	return len(vars), nil
}
