package view

import (
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/i18n"
)

// DefaultFuncs returns the helpers every template may call. "t" returns the key itself until
// a bundle is installed with TranslateFuncs.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"t":        func(_, key string) string { return key },
		"money":    format.Money,
		"grouped":  format.Grouped,
		"title":    format.Title,
		"badge":    format.ProductBadge,
		"truncate": format.Truncate,
		"fmtDate":  func(t time.Time, lang string) string { return format.FmtDate(t, lang) },
		"now":      time.Now,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"seq":      seq,
		"dict":     dict,
		"lower":    strings.ToLower,
		"join":     strings.Join,
		"jsonld":   func(s string) template.JS { return template.JS(s) },
		"isZero":   func(p backend.Price) bool { return p == 0 },
		"dir":      textDirection,
	}
}

// TranslateFuncs binds "t" to a bundle.
func TranslateFuncs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"t": bundle.T,
	}
}

func seq(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	out := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		out[key] = values[i+1]
	}
	return out, nil
}

func textDirection(lang string) string {
	if lang == "ur" {
		return "rtl"
	}
	return "ltr"
}
