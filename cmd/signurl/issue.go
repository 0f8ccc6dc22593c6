package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

func newIssueCmd(opts *globalOpts) *cobra.Command {
	var (
		path string
		ttl  int
		at   string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Emite una URL firmada para un path de la distribución",
		Example: `  signurl issue --path /his-girl-friday/master.m3u8
  signurl issue --path /his-girl-friday/master.m3u8 --ttl 600 --out json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl < 0 {
				return fmt.Errorf("--ttl debe ser positivo (got %d)", ttl)
			}
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			bo := cfg.SigningOptions()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				bo.Options = append(bo.Options, cdnsign.WithClock(func() time.Time { return t }))
			}
			issuer, err := cdnsign.Bootstrap(bo)
			if err != nil {
				return err
			}

			signed, err := issuer.Issue(path, time.Duration(ttl)*time.Second)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.out == "json" {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(signed)
			}
			fmt.Fprintln(w, signed.URL)
			fmt.Fprintf(w, "expires: %s (%d)\n", signed.ExpiresAt.Format(time.RFC3339), signed.ExpiresAt.Unix())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path del objeto, con '/' inicial (ej: /slug/master.m3u8)")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "segundos de validez (0 = url_ttl_seconds de la config)")
	cmd.Flags().StringVar(&at, "at", "", "instante de emisión RFC3339 (default: ahora)")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
