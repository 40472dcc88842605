package processing

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrUnresolvable is returned when a URI-like reference cannot be mapped to
// a filesystem path.
var ErrUnresolvable = errors.New("cannot resolve to a file path")

// ResolverFunc maps a URI of a registered scheme to a filesystem path.
type ResolverFunc func(u *url.URL) (string, error)

// RegisterResolver installs fn for URIs with the given scheme, such as
// "content". Registering nil removes the resolver.
func (p *Processor) RegisterResolver(scheme string, fn ResolverFunc) {
	scheme = strings.ToLower(scheme)
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn == nil {
		delete(p.resolvers, scheme)
		return
	}
	p.resolvers[scheme] = fn
}

// ResolvePath turns a bare path, a file:// URI or a URI of a registered
// scheme into a filesystem path.
func (p *Processor) ResolvePath(uri string) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", fmt.Errorf("%w: empty reference", ErrUnresolvable)
	}

	u, err := url.Parse(uri)
	// Bare paths, including Windows drive letters parsed as a one-letter scheme.
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return filepath.Clean(uri), nil
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "file" {
		if u.Path == "" {
			return "", fmt.Errorf("%w: %s has no path", ErrUnresolvable, uri)
		}
		return filepath.FromSlash(u.Path), nil
	}

	p.mu.RLock()
	fn, ok := p.resolvers[scheme]
	p.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrUnresolvable, u.Scheme)
	}

	path, err := fn(u)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrUnresolvable, uri)
	}
	return path, nil
}
