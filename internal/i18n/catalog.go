// Package i18n holds the display-language catalogs for every human-readable
// string the service emits: tool and resource descriptions, tool results and
// operation error messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog must cover.
const BaseLocale = "en"

var supportedTags = []language.Tag{
	language.English,
	language.Thai,
}

var tagMatcher = language.NewMatcher(supportedTags)

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle is a loaded set of locale catalogs.
type Bundle struct {
	builder *catalog.Builder
	locales map[string]map[string]string
}

// Load loads the catalogs embedded in the binary.
func Load() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads every locales/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(language.English)),
		locales: map[string]map[string]string{},
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}

	if err := b.checkCoverage(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
	if locale != fromPath {
		return fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, fromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages map is required", p)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale: %w", p, err)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if err := b.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: set %s: %w", p, key, err)
		}
		messages[key] = value
	}
	b.locales[locale] = messages
	return nil
}

// checkCoverage makes sure no locale is missing a base-locale key.
func (b *Bundle) checkCoverage() error {
	base, ok := b.locales[BaseLocale]
	if !ok {
		return fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	for locale, messages := range b.locales {
		for key := range base {
			if _, ok := messages[key]; !ok {
				return fmt.Errorf("locale %s: missing key %q", locale, key)
			}
		}
	}
	return nil
}

// Locales returns the loaded locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Keys returns the sorted message keys of a locale.
func (b *Bundle) Keys(locale string) []string {
	messages := b.locales[locale]
	out := make([]string, 0, len(messages))
	for key := range messages {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Printer returns a message printer for tag backed by this bundle.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.builder))
}

// Default returns the default display language.
func Default() language.Tag {
	return language.English
}

// Supported returns the supported display languages.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Resolve maps a language value such as "th" or "en-US" to a supported tag.
// Empty means the default language.
func Resolve(value string) (language.Tag, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default(), nil
	}
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, fmt.Errorf("parse language %q: %w", value, err)
	}
	_, index, confidence := tagMatcher.Match(parsed)
	if confidence == language.No {
		return language.Tag{}, fmt.Errorf("unsupported language %q", value)
	}
	return supportedTags[index], nil
}
