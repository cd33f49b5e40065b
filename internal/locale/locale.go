// Package locale loads the user-facing strings of the compose screen from
// embedded YAML bundles.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bundles/*.yaml
var bundles embed.FS

// ErrUnknownLanguage is returned for a language without a bundle.
var ErrUnknownLanguage = errors.New("unknown language")

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

type Composer struct {
	Title       string `yaml:"title"`
	Placeholder string `yaml:"placeholder"`
	TweetButton string `yaml:"tweet_button"`
}

type Message struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Strings is one language bundle.
type Strings struct {
	Composer          Composer `yaml:"composer"`
	PostStatusError   Message  `yaml:"post_status_error"`
	PostStatusSuccess Message  `yaml:"post_status_success"`
}

// Load returns the bundle for lang. A missing bundle or missing key is an
// error; callers treat it as fatal at startup.
func Load(lang string) (Strings, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	data, err := bundles.ReadFile(path.Join("bundles", lang+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Strings{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownLanguage, lang, strings.Join(Languages(), ", "))
		}
		return Strings{}, fmt.Errorf("read bundle %s: %w", lang, err)
	}
	return Parse(data)
}

// Parse decodes a bundle and validates it.
func Parse(data []byte) (Strings, error) {
	var s Strings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Strings{}, fmt.Errorf("parse bundle: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Strings{}, err
	}
	return s, nil
}

// MustLoad is Load for callers that cannot continue without strings.
func MustLoad(lang string) Strings {
	s, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate reports every empty key.
func (s Strings) Validate() error {
	required := map[string]string{
		"composer.title":                  s.Composer.Title,
		"composer.placeholder":            s.Composer.Placeholder,
		"composer.tweet_button":           s.Composer.TweetButton,
		"post_status_error.title":         s.PostStatusError.Title,
		"post_status_error.description":   s.PostStatusError.Description,
		"post_status_success.title":       s.PostStatusSuccess.Title,
		"post_status_success.description": s.PostStatusSuccess.Description,
	}
	var missing []string
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("locale bundle missing keys: %s", strings.Join(missing, ", "))
}

// Languages lists the embedded bundles.
func Languages() []string {
	entries, err := bundles.ReadDir("bundles")
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			langs = append(langs, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(langs)
	return langs
}
