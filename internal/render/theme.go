package render

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ManifestLoader loads a go-theme manifest from a theme directory.
type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("theme path required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeConfig configures theme selection.
type ThemeConfig struct {
	BasePath       string
	DefaultTheme   string
	DefaultVariant string
	CSSPrefix      string
}

// ThemeContext is the theme data handed to the page layout.
type ThemeContext struct {
	Name    string
	Variant string
	CSSVars map[string]string
}

// CSS renders the variables as a :root block. Values that could break out
// of the declaration are dropped.
func (t ThemeContext) CSS() string {
	if len(t.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.CSSVars))
	for key := range t.CSSVars {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, key := range keys {
		value := t.CSSVars[key]
		if strings.ContainsAny(key+value, "<>{};") {
			continue
		}
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		fmt.Fprintf(&b, "%s:%s;", name, value)
	}
	b.WriteString("}")
	return b.String()
}

// ThemeSelector loads manifests on first use and selects theme variants.
type ThemeSelector struct {
	registry *gotheme.MemoryRegistry
	loader   ManifestLoader
	cfg      ThemeConfig

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

// NewThemeSelector builds a selector. A nil loader reads manifests from disk
// under cfg.BasePath.
func NewThemeSelector(cfg ThemeConfig, loader ManifestLoader) *ThemeSelector {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &ThemeSelector{
		registry:  gotheme.NewRegistry(),
		loader:    loader,
		cfg:       cfg,
		manifests: map[string]*gotheme.Manifest{},
	}
}

// Select returns the theme context for name and variant, falling back to the
// configured defaults. An empty result means the built-in styles apply.
func (s *ThemeSelector) Select(name, variant string) (ThemeContext, error) {
	if s == nil {
		return ThemeContext{}, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(s.cfg.DefaultTheme)
	}
	if name == "" {
		return ThemeContext{}, nil
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = strings.TrimSpace(s.cfg.DefaultVariant)
	}

	if err := s.ensureManifest(name); err != nil {
		return ThemeContext{}, err
	}
	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.cfg.DefaultTheme,
		DefaultVariant: s.cfg.DefaultVariant,
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return ThemeContext{}, fmt.Errorf("select theme %s: %w", name, err)
	}
	return ThemeContext{
		Name:    selection.Theme,
		Variant: selection.Variant,
		CSSVars: selection.CSSVariables(s.cfg.CSSPrefix),
	}, nil
}

func (s *ThemeSelector) ensureManifest(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.manifests[key]; ok {
		return nil
	}
	manifest, err := s.loader.Load(filepath.Join(s.cfg.BasePath, name))
	if err != nil {
		return fmt.Errorf("load theme manifest %s: %w", name, err)
	}
	normalized := *manifest
	if !strings.EqualFold(strings.TrimSpace(normalized.Name), name) {
		normalized.Name = name
	}
	if err := s.registry.Register(&normalized); err != nil {
		return fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return nil
}
