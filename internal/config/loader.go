package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/validate"
)

// Well-known files inside the repository root.
const (
	FileName    = ".commitgen.yml"
	EnvFileName = ".env"
)

// Loaded is the result of a successful load. It is not modified afterwards.
type Loaded struct {
	Root       string
	ConfigPath validate.Path
	EnvPath    validate.Path
	Config     Config
	// Raw is the merged, validated map, including keys Config does not model.
	Raw map[string]any
	// EnvApplied is the number of assignments taken from the env file.
	EnvApplied int

	env EnvSink
}

// Loader configures a load. The zero value loads from the working
// directory into the process environment.
type Loader struct {
	// StartDir is where the upward search for the repository begins.
	StartDir string
	// Root skips the search and uses this directory as the repository root.
	Root string
	// Env receives .env assignments. Defaults to OSEnv.
	Env EnvSink
	// Overrides are "section.key" -> value pairs applied after the merge,
	// typically from command-line flags.
	Overrides map[string]string
}

// Load runs a default Loader.
func Load() (*Loaded, error) {
	return Loader{}.Load()
}

// Load runs the loading sequence described in the package documentation.
func (l Loader) Load() (*Loaded, error) {
	env := l.Env
	if env == nil {
		env = OSEnv{}
	}

	root, err := l.locateRoot()
	if err != nil {
		return nil, fail("locate repository root", err)
	}

	cfgPath, err := validate.FilePath(root, FileName)
	if err != nil {
		return nil, fail("validate config path", err)
	}
	envPath, err := validate.FilePath(root, EnvFileName)
	if err != nil {
		return nil, fail("validate env path", err)
	}

	logging.InstallRedaction()

	merged := DefaultMap()
	if cfgPath.Exists() {
		user, err := ReadFile(cfgPath)
		if err != nil {
			return nil, fail("read configuration", err)
		}
		merged = Merge(merged, user)
	}

	applied := 0
	if envPath.Exists() {
		applied, err = LoadEnvFile(envPath, env)
		if err != nil {
			return nil, fail("load environment file", err)
		}
	}

	if len(l.Overrides) > 0 {
		keys := make([]string, 0, len(l.Overrides))
		for k := range l.Overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := SetField(merged, k, l.Overrides[k]); err != nil {
				return nil, fail("apply override", err)
			}
		}
	}

	if err := Validate(merged); err != nil {
		return nil, fail("validate configuration", err)
	}
	cfg, err := decode(merged)
	if err != nil {
		return nil, fail("decode configuration", secerr.Wrap(secerr.CategoryConfigInvalid, "configuration could not be decoded", err))
	}

	logging.Debug().
		Str("provider", cfg.API.Provider).
		Bool("config_file", cfgPath.Exists()).
		Int("env_applied", applied).
		Msg("configuration loaded")

	return &Loaded{
		Root:       root,
		ConfigPath: cfgPath,
		EnvPath:    envPath,
		Config:     cfg,
		Raw:        merged,
		EnvApplied: applied,
		env:        env,
	}, nil
}

// FindRoot returns the repository root at or above start.
func FindRoot(start string) (string, error) {
	root, err := Loader{StartDir: start}.locateRoot()
	if err != nil {
		return "", secerr.Normalize(err)
	}
	return root, nil
}

func (l Loader) locateRoot() (string, error) {
	if l.Root != "" {
		return validate.RepoPath(l.Root)
	}
	start := l.StartDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", secerr.Wrap(secerr.CategoryIO, "cannot determine working directory", err)
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", secerr.Wrap(secerr.CategoryInvalidInput, "invalid start directory", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, validate.RepoMarker)); err == nil {
			return validate.RepoPath(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", secerr.New(secerr.CategoryNotRepository, "not a git repository")
		}
		dir = parent
	}
}

// fail logs the underlying error through the redacted logger and returns
// the SecurityError that describes the step.
func fail(step string, err error) error {
	logging.Debug().Str("step", step).Err(err).Msg("configuration load failed")
	return secerr.Normalize(err)
}
