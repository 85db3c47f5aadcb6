// Package catalog loads the embedded locale message files and resolves
// user-facing locales against them.
//
// Files live at locales/<locale>/<namespace>.yaml. Keys are unique per locale
// across namespaces, and keys prefixed "core." belong to the core namespace.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other locale falls back to.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type localeCatalog struct {
	namespaces map[string]map[string]string
	messages   map[string]string
}

// Bundle holds every loaded locale and a matcher over them.
type Bundle struct {
	locales map[string]*localeCatalog
	// order lists locales in matcher order; BaseLocale comes first so that a
	// failed match lands on it.
	order   []string
	matcher language.Matcher
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the process-wide embedded bundle, already registered with
// x/text/message.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalog files compiled into this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads every locales/*/*.yaml file in catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]*localeCatalog{}}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := b.buildMatcher(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	namespace := strings.TrimSpace(file.Namespace)
	switch {
	case locale == "":
		return fmt.Errorf("locale is required")
	case locale != path.Base(path.Dir(p)):
		return fmt.Errorf("locale %q must match its directory", locale)
	case namespace == "":
		return fmt.Errorf("namespace is required")
	case namespace != strings.TrimSuffix(path.Base(p), path.Ext(p)):
		return fmt.Errorf("namespace %q must match its file name", namespace)
	case len(file.Messages) == 0:
		return fmt.Errorf("messages are required")
	}

	lc, ok := b.locales[locale]
	if !ok {
		lc = &localeCatalog{namespaces: map[string]map[string]string{}, messages: map[string]string{}}
		b.locales[locale] = lc
	}
	if _, dup := lc.namespaces[namespace]; dup {
		return fmt.Errorf("namespace %q already defined for %s", namespace, locale)
	}

	ns := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("message key cannot be blank")
		}
		if strings.HasPrefix(key, "core.") && namespace != "core" {
			return fmt.Errorf("key %q must be defined in the core namespace", key)
		}
		if _, dup := lc.messages[key]; dup {
			return fmt.Errorf("duplicate key %q in %s", key, locale)
		}
		lc.messages[key] = value
		ns[key] = value
	}
	lc.namespaces[namespace] = ns
	return nil
}

func (b *Bundle) buildMatcher() error {
	b.order = []string{BaseLocale}
	for _, locale := range b.Locales() {
		if locale != BaseLocale {
			b.order = append(b.order, locale)
		}
	}
	tags := make([]language.Tag, 0, len(b.order))
	for _, locale := range b.order {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return nil
}

// Register publishes every message to x/text/message under the locale tag
// and its base language, so Printer("pt") finds pt-BR strings.
func (b *Bundle) Register() error {
	for _, locale := range b.order {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag.String() != tag.String() {
				tags = append(tags, baseTag)
			}
		}
		messages := b.locales[locale].messages
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			for _, t := range tags {
				if err := message.SetString(t, key, messages[key]); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// Resolve maps a locale identifier to the closest bundle locale. Unknown or
// malformed input resolves to BaseLocale.
func (b *Bundle) Resolve(locale string) string {
	locale = strings.TrimSpace(locale)
	if _, ok := b.locales[locale]; ok {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return BaseLocale
	}
	return b.match(tag)
}

// MatchLocale picks the bundle locale that best serves an Accept-Language
// header value.
func (b *Bundle) MatchLocale(acceptLanguage string) string {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return BaseLocale
	}
	return b.match(desired...)
}

func (b *Bundle) match(desired ...language.Tag) string {
	_, index, confidence := b.matcher.Match(desired...)
	if confidence == language.No {
		return BaseLocale
	}
	return b.order[index]
}

// Printer returns an x/text printer for the resolved locale.
func (b *Bundle) Printer(locale string) *message.Printer {
	return message.NewPrinter(language.MustParse(b.Resolve(locale)))
}

// HasLocale reports whether locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales, sorted.
func (b *Bundle) Locales() []string {
	return slices.Sorted(maps.Keys(b.locales))
}

// LocaleMessages returns a copy of every message of one locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	lc, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(lc.messages)
}

// NamespaceMessages returns a copy of one namespace of one locale.
func (b *Bundle) NamespaceMessages(locale, namespace string) map[string]string {
	lc, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		return map[string]string{}
	}
	ns, ok := lc.namespaces[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(ns)
}

// NamespaceMessagesWithFallback resolves locale, then returns the namespace
// messages and the locale that supplied them. A resolved locale without the
// namespace falls back to BaseLocale.
func (b *Bundle) NamespaceMessagesWithFallback(locale, namespace string) (string, map[string]string) {
	resolved := b.Resolve(locale)
	if messages := b.NamespaceMessages(resolved, namespace); len(messages) > 0 {
		return resolved, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func mustLoadAndRegisterEmbedded() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}
