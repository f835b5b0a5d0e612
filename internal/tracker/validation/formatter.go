package validation

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"tracker/internal/tracker/models"
)

// MessageFormatter turns a code and its arguments into human readable text.
type MessageFormatter interface {
	Format(code ErrorCode, args ...any) string
}

// CatalogFormatter renders messages from a golang.org/x/text catalog. Arguments are
// rendered to strings first so metadata references honour the import IdSchemes.
type CatalogFormatter struct {
	printer   *message.Printer
	idSchemes models.IdSchemeParams
}

var (
	defaultLocale    = language.English
	defaultCatalog   = newCatalog()
	supportedLocales = append([]language.Tag{defaultLocale}, defaultCatalog.Languages()...)
	localeMatcher    = language.NewMatcher(supportedLocales)
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, tmpl := range messageTemplates {
		if err := b.SetString(language.English, string(code), tmpl); err != nil {
			panic(fmt.Sprintf("register message %s: %v", code, err))
		}
	}
	return b
}

// NewCatalogFormatter builds a formatter for locale. Unknown locales fall back to English.
func NewCatalogFormatter(locale language.Tag, idSchemes models.IdSchemeParams) *CatalogFormatter {
	return &CatalogFormatter{
		printer:   message.NewPrinter(matchLocale(locale), message.Catalog(defaultCatalog)),
		idSchemes: idSchemes,
	}
}

// matchLocale resolves locale to a language the catalog carries.
func matchLocale(locale language.Tag) language.Tag {
	_, idx, conf := localeMatcher.Match(locale)
	if conf == language.No {
		return defaultLocale
	}
	return supportedLocales[idx]
}

func (f *CatalogFormatter) Format(code ErrorCode, args ...any) string {
	rendered := RenderArgs(f.idSchemes, args...)
	values := make([]any, len(rendered))
	for i, s := range rendered {
		values[i] = s
	}
	return f.printer.Sprintf(string(code), values...)
}

// RenderArgs converts message arguments to the strings stored on a finding.
func RenderArgs(idSchemes models.IdSchemeParams, args ...any) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = renderArg(idSchemes, arg)
	}
	return out
}

func renderArg(idSchemes models.IdSchemeParams, arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case models.Identity:
		return v.UID
	case models.RecordKind:
		return v.String()
	case models.MetadataObject:
		return v.Render(idSchemes)
	case models.Endpoint:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
