package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/handlers"
)

func newSitemapCommand(opts *rootOptions) *cobra.Command {
	var siteURL string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml built from the live catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if siteURL == "" {
				siteURL = cfg.Storefront.SiteURL
			}

			api, err := backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
			if err != nil {
				return err
			}
			sm, err := handlers.BuildSitemap(cmd.Context(), siteURL, catalog.NewHTTPService(api))
			if err != nil {
				return fmt.Errorf("build sitemap: %w", err)
			}
			_, err = sm.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&siteURL, "site-url", "", "public origin for <loc> entries (defaults to QNH_WEB_SITE_URL)")
	return cmd
}
