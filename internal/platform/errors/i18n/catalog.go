// Package i18n renders localized error messages from the "errors" namespace
// of the locale catalog.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/charsheet/internal/platform/i18n/catalog"
)

// Namespace is the locale catalog namespace holding error messages.
const Namespace = "errors"

// Code is a machine-readable error code. It mirrors errors.Code, which
// cannot be imported here without a cycle.
type Code = string

// message is one catalog entry. Entries without template actions keep a nil
// tmpl; entries that fail to parse render their raw text.
type message struct {
	text string
	tmpl *template.Template
}

// Catalog holds the compiled error messages of one locale.
type Catalog struct {
	locale   string
	messages map[Code]message
}

// catalogs caches one Catalog per resolved locale.
var catalogs sync.Map

// GetCatalog returns the catalog for locale, falling back through the
// locale catalog's resolution to the base locale.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if cached, ok := catalogs.Load(requested); ok {
		return cached.(*Catalog)
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, Namespace)
	cat, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, messages))
	if requested != resolved {
		catalogs.Store(requested, cat)
	}
	return cat.(*Catalog)
}

// NewCatalog compiles messages for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	compiled := make(map[Code]message, len(messages))
	for code, text := range messages {
		entry := message{text: text}
		if strings.Contains(text, "{{") {
			if tmpl, err := template.New(code).Option("missingkey=zero").Parse(text); err == nil {
				entry.tmpl = tmpl
			}
		}
		compiled[code] = entry
	}
	return &Catalog{locale: locale, messages: compiled}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata as template data. An
// unknown code renders as itself and a failing template as its raw text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	entry, ok := c.messages[code]
	if !ok {
		return code
	}
	if entry.tmpl == nil {
		return entry.text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var out strings.Builder
	if err := entry.tmpl.Execute(&out, metadata); err != nil {
		return entry.text
	}
	return out.String()
}
