package services

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/client"
)

// SourcePolicy decides which sources a request may name. Configured sources
// are always allowed. Other local paths must resolve, symlinks included,
// inside one of the allowed roots; other URLs must fall under an allowed
// prefix with the same scheme and host.
type SourcePolicy struct {
	defaults    []string
	configured  map[string]bool
	roots       []string
	urlPrefixes []*url.URL
}

// NewSourcePolicy builds a policy. With no roots and no prefixes only the
// configured sources can be loaded.
func NewSourcePolicy(defaults, roots, urlPrefixes []string) (*SourcePolicy, error) {
	p := &SourcePolicy{
		defaults:   defaults,
		configured: make(map[string]bool, len(defaults)),
	}
	for _, d := range defaults {
		p.configured[strings.TrimSpace(d)] = true
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed root %q: %w", root, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		p.roots = append(p.roots, abs)
	}

	for _, raw := range urlPrefixes {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid allowed URL prefix %q: want an absolute http(s) URL", raw)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		p.urlPrefixes = append(p.urlPrefixes, u)
	}
	return p, nil
}

// Defaults returns the configured sources.
func (p *SourcePolicy) Defaults() []string {
	return p.defaults
}

// Check returns ErrSourceNotAllowed unless every location may be loaded.
func (p *SourcePolicy) Check(locations []string) error {
	for _, loc := range locations {
		if !p.allows(loc) {
			return apperrors.NewSourceNotAllowedError(loc)
		}
	}
	return nil
}

func (p *SourcePolicy) allows(location string) bool {
	if p.configured[location] {
		return true
	}
	if client.IsRemote(location) {
		return p.allowsURL(location)
	}
	return p.allowsPath(location)
}

func (p *SourcePolicy) allowsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil || u.User != nil {
		return false
	}
	// Cleaning keeps "/data/../secret" from passing a "/data/" prefix.
	cleaned := path.Clean("/"+u.Path) + "/"
	for _, prefix := range p.urlPrefixes {
		if !strings.EqualFold(u.Scheme, prefix.Scheme) || !strings.EqualFold(u.Host, prefix.Host) {
			continue
		}
		if strings.HasPrefix(cleaned, prefix.Path) {
			return true
		}
	}
	return false
}

// allowsPath denies paths that do not exist, so a rejection never reveals
// whether a file is there.
func (p *SourcePolicy) allowsPath(location string) bool {
	if len(p.roots) == 0 {
		return false
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return false
	}
	for _, root := range p.roots {
		rel, err := filepath.Rel(root, resolved)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
