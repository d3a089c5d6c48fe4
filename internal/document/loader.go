package document

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.yaml.in/yaml/v3"
)

// Loader fetches and decodes configuration documents from local paths and
// http(s) URLs.
type Loader struct {
	client *resty.Client
}

// NewLoader returns a Loader with a bounded HTTP client.
func NewLoader() *Loader {
	return &Loader{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json, application/yaml, text/plain"),
	}
}

// IsRemoteRef reports whether ref is an http(s) URL.
func IsRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolveRef canonicalizes ref against the document it was referenced from.
// Relative refs resolve against the referencing document, not the entry
// point. An empty base resolves local refs against the working directory.
func ResolveRef(base, ref string) (string, error) {
	if IsRemoteRef(ref) {
		return ref, nil
	}
	if IsRemoteRef(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parsing base URL %q: %w", base, err)
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parsing ref %q: %w", ref, err)
		}
		return baseURL.ResolveReference(rel).String(), nil
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	dir := ""
	if base != "" {
		dir = filepath.Dir(base)
	}
	abs, err := filepath.Abs(filepath.Join(dir, ref))
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", ref, err)
	}
	return abs, nil
}

// Fetch returns the raw bytes of a canonical ref. Remote fetches use a plain
// GET; any non-2xx status is an error.
func (l *Loader) Fetch(ref string) ([]byte, error) {
	if IsRemoteRef(ref) {
		resp, err := l.client.R().Get(ref)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetching %s: unexpected status %s", ref, resp.Status())
		}
		return resp.Body(), nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

// Load fetches and decodes the document at the canonical ref, stamps
// provenance on every entity, and links each variable to its document's
// enabled-state. A missing tasks array decodes to an empty task list, so
// documents containing only prompts or variables are valid bases to inherit
// from.
func (l *Loader) Load(ref string) (*Configuration, error) {
	data, err := l.Fetch(ref)
	if err != nil {
		return nil, &NotFoundError{Ref: ref, Err: err}
	}

	cfg, err := decode(ref, data)
	if err != nil {
		return nil, &ParseError{Ref: ref, Err: err}
	}

	cfg.SourceURL = ref
	cfg.Raw = data
	for i := range cfg.Tasks {
		cfg.Tasks[i].SourceURL = ref
	}
	for i := range cfg.Prompts {
		cfg.Prompts[i].SourceURL = ref
	}
	for i := range cfg.Variables {
		cfg.Variables[i].SourceURL = ref
		cfg.Variables[i].DocEnabled = cfg.Enabled
	}
	return cfg, nil
}

// decode parses document bytes, choosing YAML or JSON by the ref extension.
// YAML documents are normalized through JSON so both formats share one set of
// decoding rules (tagged unions, string-or-list fields).
func decode(ref string, data []byte) (*Configuration, error) {
	var cfg Configuration
	if isYAMLRef(ref) {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("unmarshaling YAML: %w", err)
		}
		jsonData, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("converting YAML document to JSON: %w", err)
		}
		data = jsonData
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isYAMLRef(ref string) bool {
	p := ref
	if IsRemoteRef(ref) {
		if u, err := url.Parse(ref); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
