// Package i18n loads YAML message catalogs and negotiates the visitor's language.
package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Bundle holds flattened catalogs keyed by language.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []string
	// order matches the tags given to matcher
	order   []string
	matcher language.Matcher
}

// Load reads <lang>.yaml for each supported language from fsys. Nested YAML maps are
// flattened into dotted keys ("cart.empty.title"). Only the fallback catalog is mandatory.
func Load(fsys fs.FS, dir string, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{"en", "ur"}
	}
	b := &Bundle{
		dict:     map[string]map[string]string{},
		fallback: fallback,
	}
	tags := []language.Tag{language.Make(fallback)}
	b.order = []string{fallback}
	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		raw, err := fs.ReadFile(fsys, path.Join(dir, l+".yaml"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		b.dict[l] = flat
		b.supported = append(b.supported, l)
		if l != fallback {
			tags = append(tags, language.Make(l))
			b.order = append(b.order, l)
		}
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	sort.Strings(b.supported)
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Supported lists the loaded languages.
func (b *Bundle) Supported() []string {
	return append([]string(nil), b.supported...)
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether a catalog exists for lang.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[strings.ToLower(lang)]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.Lookup(lang, key); ok {
		return v
	}
	return key
}

// Lookup is T without the key fallback.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return "", false
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	if idx >= 0 && idx < len(b.order) {
		return b.order[idx]
	}
	return b.fallback
}
