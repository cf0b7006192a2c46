package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/index"
	"github.com/DanielSebasCM/research-stay-2024/model"
	"github.com/DanielSebasCM/research-stay-2024/space"
	"github.com/DanielSebasCM/research-stay-2024/store"
	"github.com/hashicorp/go-retryablehttp"
)

// SQLitePrefix marks a model name as a SQLite store path.
const SQLitePrefix = "sqlite:"

var errNotFound = errors.New("not found locally and no download URL configured")

// Provider loads embedding spaces.
type Provider struct {
	dir    string
	url    string
	limit  int
	kind   index.Kind
	client *retryablehttp.Client
	log    *slog.Logger
}

// Option customises a Provider.
type Option func(*Provider)

// WithDir sets the dataset directory (<dir>/<name>/<name>.gz).
func WithDir(dir string) Option { return func(p *Provider) { p.dir = dir } }

// WithDownloadURL sets the base URL datasets are fetched from. Empty disables
// downloads.
func WithDownloadURL(url string) Option {
	return func(p *Provider) { p.url = strings.TrimRight(url, "/") }
}

// WithLimit caps the number of terms read from a model file.
func WithLimit(n int) Option { return func(p *Provider) { p.limit = n } }

// WithIndex selects the index built over file-backed spaces.
func WithIndex(kind index.Kind) Option { return func(p *Provider) { p.kind = kind } }

// WithLogger sets the logger, which the download client shares.
func WithLogger(log *slog.Logger) Option { return func(p *Provider) { p.log = log } }

// WithHTTPClient replaces the download client.
func WithHTTPClient(c *retryablehttp.Client) Option { return func(p *Provider) { p.client = c } }

// New returns a Provider with downloads retried up to three times.
func New(opts ...Option) *Provider {
	p := &Provider{kind: index.KindAuto, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.client == nil {
		p.client = retryablehttp.NewClient()
		p.client.RetryWaitMax = 5 * time.Second
		p.client.RetryMax = 3
	}
	p.client.Logger = p.log
	return p
}

// Load resolves name to a space. Any failure is reported as a
// *embedding.ModelUnavailableError. Spaces backed by SQLite implement
// io.Closer and should be closed by the caller.
func (p *Provider) Load(ctx context.Context, name string) (embedding.Space, error) {
	s, err := p.load(ctx, name)
	if err != nil {
		return nil, &embedding.ModelUnavailableError{Name: name, Err: err}
	}
	return s, nil
}

func (p *Provider) load(ctx context.Context, name string) (embedding.Space, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("empty model name")
	}
	if path, ok := strings.CutPrefix(name, SQLitePrefix); ok {
		p.log.Info("opening sqlite store", "path", path)
		return store.Open(ctx, path)
	}
	if isFile(name) {
		return p.loadFile(ctx, name)
	}
	path, err := p.datasetPath(name)
	if err != nil {
		return nil, err
	}
	if !isFile(path) {
		if p.url == "" {
			return nil, errNotFound
		}
		if err := p.download(ctx, name, path); err != nil {
			return nil, err
		}
	}
	return p.loadFile(ctx, path)
}

// datasetPath maps a dataset name to its gensim-data location.
func (p *Provider) datasetPath(name string) (string, error) {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("no such file %s", name)
	}
	if p.dir == "" {
		return "", errors.New("no model directory configured")
	}
	return filepath.Join(p.dir, name, name+".gz"), nil
}

func (p *Provider) loadFile(ctx context.Context, path string) (embedding.Space, error) {
	start := time.Now()
	p.log.Info("reading model", "path", path, "limit", p.limit)
	e, err := model.ReadFile(ctx, path, model.WithLimit(p.limit))
	if err != nil {
		return nil, err
	}
	s, err := space.New(e.Terms, e.Vectors, space.WithIndex(p.kind))
	if err != nil {
		return nil, err
	}
	p.log.Info("model loaded",
		"terms", s.Len(),
		"dim", s.Dim(),
		"index", index.Resolve(p.kind, s.Len(), s.Dim()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return s, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
