// Package i18n holds the label catalog for the supported locales.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

//go:embed locales.yaml
var catalogYAML []byte

// Locale identifies one of the shipped label sets.
type Locale string

const (
	English Locale = "en"
	Russian Locale = "ru"

	// Default is used whenever a requested locale is not supported.
	Default = English
)

var (
	supported = []Locale{English, Russian}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Russian})
)

// Headers are the export column titles.
type Headers struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Quantity  string `yaml:"quantity"`
	Price     string `yaml:"price"`
	Threshold string `yaml:"threshold"`
	Status    string `yaml:"status"`
	Value     string `yaml:"value"`
}

// Row returns the headers in export column order.
func (h Headers) Row() []string {
	return []string{h.Name, h.Category, h.Quantity, h.Price, h.Threshold, h.Status, h.Value}
}

// Alert holds the restock notification templates.
type Alert struct {
	Title string `yaml:"title"`
	Line  string `yaml:"line"`
	None  string `yaml:"none"`
	Total string `yaml:"total"`
}

// Labels is the complete label set of one locale.
type Labels struct {
	Delimiter  string                        `yaml:"delimiter"`
	SheetName  string                        `yaml:"sheet_name"`
	FilePrefix string                        `yaml:"file_prefix"`
	Reports    map[string]string             `yaml:"reports"`
	Headers    Headers                       `yaml:"headers"`
	Status     map[models.StockStatus]string `yaml:"status"`
	Audit      map[models.AuditAction]string `yaml:"audit"`
	Alert      Alert                         `yaml:"alert"`
}

// Comma returns the CSV field delimiter as a rune.
func (l Labels) Comma() rune {
	r, _ := utf8.DecodeRuneInString(l.Delimiter)
	return r
}

// StatusLabel returns the display label for a stock status.
func (l Labels) StatusLabel(status models.StockStatus) string {
	if label, ok := l.Status[status]; ok {
		return label
	}
	return string(status)
}

// ReportLabel returns the localized report type label used in file names.
func (l Labels) ReportLabel(reportType string) string {
	if label, ok := l.Reports[reportType]; ok {
		return label
	}
	return reportType
}

// AuditLabel returns the localized audit action label.
func (l Labels) AuditLabel(action models.AuditAction) string {
	if label, ok := l.Audit[action]; ok {
		return label
	}
	return string(action)
}

var loadCatalog = sync.OnceValues(func() (map[Locale]Labels, error) {
	return parseCatalog(catalogYAML)
})

func parseCatalog(raw []byte) (map[Locale]Labels, error) {
	var catalog map[Locale]Labels
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode locale catalog: %w", err)
	}

	for _, locale := range supported {
		labels, ok := catalog[locale]
		if !ok {
			return nil, fmt.Errorf("locale %s missing from catalog", locale)
		}
		if utf8.RuneCountInString(labels.Delimiter) != 1 {
			return nil, fmt.Errorf("locale %s: delimiter must be a single character, got %q", locale, labels.Delimiter)
		}
		if labels.SheetName == "" || labels.FilePrefix == "" {
			return nil, fmt.Errorf("locale %s: sheet name and file prefix are required", locale)
		}
	}

	return catalog, nil
}

// For returns the labels of locale, falling back to Default.
func For(locale Locale) Labels {
	catalog, err := loadCatalog()
	if err != nil {
		panic(err)
	}
	if labels, ok := catalog[locale]; ok {
		return labels
	}
	return catalog[Default]
}

// Parse accepts a language code such as "ru", "RU" or "ru-RU".
func Parse(code string) Locale {
	code = strings.TrimSpace(code)
	if code == "" {
		return Default
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Default
	}
	base, _ := tag.Base()
	for _, locale := range supported {
		if base.String() == string(locale) {
			return locale
		}
	}
	return Default
}

// Match picks the best supported locale for an Accept-Language header value.
func Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	return supported[idx]
}

// Supported lists the shipped locales.
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}
