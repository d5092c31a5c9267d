package handlers

import "github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
}

// Enabled reports whether the tag should be rendered.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }

// analyticsFromConfig builds Analytics from the storefront settings.
func analyticsFromConfig(cfg config.StorefrontConfig) Analytics {
	return Analytics{GA4MeasurementID: cfg.AnalyticsID}
}
