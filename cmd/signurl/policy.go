package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

func newPolicyCmd(opts *globalOpts) *cobra.Command {
	var (
		path    string
		domain  string
		expires string
	)
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Imprime el canned policy exacto que se firma (no necesita clave)",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := parseExpires(expires)
			if err != nil {
				return err
			}
			if domain == "" {
				cfg, err := opts.load()
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
				domain = cfg.CloudFront.Domain
			}
			if domain == "" {
				return fmt.Errorf("%w: distribution domain is required (--domain o cloudfront.domain)", cdnsign.ErrConfiguration)
			}
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("%w: object path %q must start with '/'", cdnsign.ErrValidation, path)
			}

			policy, err := cdnsign.BuildPolicy(cdnsign.ResourceURL(domain, path), exp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(policy))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path del objeto, con '/' inicial")
	cmd.Flags().StringVar(&domain, "domain", "", "host de la distribución (default: cloudfront.domain)")
	cmd.Flags().StringVar(&expires, "expires", "", "expiración RFC3339 o epoch en segundos")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}

func parseExpires(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("--expires: %q no es RFC3339 ni epoch", s)
}
