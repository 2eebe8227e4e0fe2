package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/l2cup/finddoc/pkg/paths"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	EnvConfigPath   = "FINDDOC_CONFIG"
	EnvCacheDir     = "FINDDOC_CACHE_DIR"
	EnvWorkers      = "FINDDOC_WORKERS"
	EnvLogVerbosity = "FINDDOC_LOG_VERBOSITY"

	Section      = "finddoc"
	FileName     = "finddoc.toml"
	EnvFileName  = ".env"
	AppDirectory = "finddoc"
)

// SystemConfig is read once per invocation and not modified afterwards.
type SystemConfig struct {
	Paths    []string `mapstructure:"paths"`
	Workers  int      `mapstructure:"workers"`
	Ignore   []string `mapstructure:"ignore"`
	CacheDir string   `mapstructure:"cache_dir"`
}

func LoadEnvFile(path string) error {

	if path == "" {
		path = EnvFileName
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}

func GetEnv(key, fallback string) string {

	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppDirectory, FileName)
}

func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppDirectory)
}

// LoadConfigFile reads the [finddoc] section of a TOML file and applies
// environment overrides.
func LoadConfigFile(path string) (*SystemConfig, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	sc, err := doc.decode()
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't decode %s", path)
	}

	if err := sc.applyEnv(); err != nil {
		return nil, err
	}

	return sc, nil
}

// Default is the configuration of an invocation without a config file.
func Default() (*SystemConfig, error) {
	sc := &SystemConfig{}
	if err := sc.applyEnv(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *SystemConfig) applyEnv() error {
	if dir := GetEnv(EnvCacheDir, ""); dir != "" {
		sc.CacheDir = dir
	}
	if sc.CacheDir == "" {
		sc.CacheDir = DefaultCacheDir()
	}

	if workers := GetEnv(EnvWorkers, ""); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvWorkers)
		}
		sc.Workers = n
	}

	return nil
}

// Roots canonicalizes every configured path. A path that cannot be resolved
// is reported in errs and left out, the others are still returned.
func (sc *SystemConfig) Roots() (roots []string, errs []error) {
	for _, p := range sc.Paths {
		root, err := paths.Canonicalize(p)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "couldn't resolve %q", p))
			continue
		}
		roots = append(roots, root)
	}
	return roots, errs
}

// Document is a whole config file. Keys outside the paths list survive edits.
type Document map[string]interface{}

func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read config")
	}

	doc := Document{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse %s", path)
	}

	return doc, nil
}

func (d Document) section() map[string]interface{} {
	if s, ok := d[Section].(map[string]interface{}); ok {
		return s
	}
	s := map[string]interface{}{}
	d[Section] = s
	return s
}

func (d Document) decode() (*SystemConfig, error) {
	sc := &SystemConfig{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           sc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(d.section()); err != nil {
		return nil, err
	}

	return sc, nil
}

func (d Document) Paths() []string {
	var out []string
	if list, ok := d.section()["paths"].([]interface{}); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (d Document) SetPaths(p []string) {
	list := make([]interface{}, 0, len(p))
	for _, s := range p {
		list = append(list, s)
	}
	d.section()["paths"] = list
}

// Edit applies fn to the config at path under an exclusive lock and
// atomically replaces the file. A missing file starts as an empty document.
func Edit(path string, fn func(doc Document) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "couldn't create config dir")
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "couldn't lock config")
	}
	defer lock.Unlock()

	doc, err := readDocument(path)
	if errors.Is(err, os.ErrNotExist) {
		doc, err = Document{}, nil
	}
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "couldn't encode config")
	}

	part := path + ".part"
	if err := os.WriteFile(part, data, 0o644); err != nil {
		return errors.Wrap(err, "couldn't write config")
	}

	return errors.Wrap(os.Rename(part, path), "couldn't replace config")
}
