// Package i18n loads translation catalogs and renders translated messages
// with interpolated values and embedded components into HTML nodes.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// catalogFile is the per-language file name inside a locale directory.
const catalogFile = "translation.json"

// Catalog holds flattened translation keys per language.
type Catalog struct {
	fallback string
	messages map[string]map[string]string
	langs    []string
	matcher  language.Matcher
}

// New builds a catalog from language → key → message maps. fallback is the
// language consulted when a key is missing in the requested one.
func New(messages map[string]map[string]string, fallback string) *Catalog {
	c := &Catalog{fallback: fallback, messages: make(map[string]map[string]string, len(messages))}
	for lang, keys := range messages {
		copied := make(map[string]string, len(keys))
		for k, v := range keys {
			copied[k] = v
		}
		c.messages[lang] = copied
		c.langs = append(c.langs, lang)
	}
	sort.Strings(c.langs)
	// The fallback goes first so the matcher prefers it on ties.
	ordered := make([]string, 0, len(c.langs))
	if _, ok := c.messages[fallback]; ok {
		ordered = append(ordered, fallback)
	}
	for _, l := range c.langs {
		if l != fallback {
			ordered = append(ordered, l)
		}
	}
	c.langs = ordered
	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(l))
	}
	c.matcher = language.NewMatcher(tags)
	return c
}

// Load reads every `{dir}/{lang}/translation.json` (or `{dir}/{lang}.yaml`)
// into a catalog. Nested objects are flattened to dotted keys.
func Load(dir, fallback string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read locales directory").
			WithContext("path", dir).
			Build()
	}
	messages := map[string]map[string]string{}
	for _, entry := range entries {
		var (
			lang string
			path string
		)
		switch {
		case entry.IsDir():
			lang = entry.Name()
			path = filepath.Join(dir, lang, catalogFile)
		case strings.HasSuffix(entry.Name(), ".yaml"), strings.HasSuffix(entry.Name(), ".yml"):
			lang = strings.TrimSuffix(strings.TrimSuffix(entry.Name(), ".yaml"), ".yml")
			path = filepath.Join(dir, entry.Name())
		default:
			continue
		}
		keys, err := loadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load translation catalog").
				WithContext("path", path).
				Build()
		}
		messages[lang] = keys
	}
	if len(messages) == 0 {
		return nil, errors.ConfigError("no translation catalogs found").WithContext("path", dir).Build()
	}
	return New(messages, fallback), nil
}

func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &tree)
	} else {
		err = yaml.Unmarshal(data, &tree)
	}
	if err != nil {
		return nil, err
	}
	flat := map[string]string{}
	flatten("", tree, flat)
	return flat, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch typed := v.(type) {
		case map[string]any:
			flatten(key, typed, out)
		case string:
			out[key] = typed
		case nil:
		default:
			out[key] = fmt.Sprint(typed)
		}
	}
}

// Languages returns the loaded languages, fallback first.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.langs...)
}

// Fallback returns the fallback language.
func (c *Catalog) Fallback() string { return c.fallback }

// Match maps an arbitrary language tag ("zh-CN", "en-US") onto the closest
// loaded language, or the fallback when nothing matches.
func (c *Catalog) Match(tag string) string {
	if _, ok := c.messages[tag]; ok {
		return tag
	}
	if len(c.langs) == 0 {
		return c.fallback
	}
	t, err := language.Parse(tag)
	if err != nil {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(t)
	if conf == language.No {
		return c.fallback
	}
	return c.langs[idx]
}

// Lookup returns the raw message for key, consulting the matched language
// and then the fallback. ok is false when neither has the key.
func (c *Catalog) Lookup(lang, key string) (string, bool) {
	if msg, ok := c.messages[c.Match(lang)][key]; ok {
		return msg, true
	}
	msg, ok := c.messages[c.fallback][key]
	return msg, ok
}
