package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

type keyReport struct {
	KeyPairID  string `json:"key_pair_id"`
	Domain     string `json:"domain"`
	ModulusBit int    `json:"modulus_bits"`
	DefaultTTL string `json:"default_ttl"`
	SelfCheck  string `json:"self_check"`
}

func newCheckKeyCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "check-key",
		Short: "Carga la clave configurada, firma y verifica una URL de prueba",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			issuer, err := cdnsign.Bootstrap(cfg.SigningOptions())
			if err != nil {
				return err
			}

			rep := keyReport{
				KeyPairID:  issuer.KeyPairID(),
				Domain:     issuer.Domain(),
				ModulusBit: issuer.PublicKey().N.BitLen(),
				DefaultTTL: issuer.DefaultTTL().String(),
				SelfCheck:  "ok",
			}
			if err := selfCheck(issuer); err != nil {
				rep.SelfCheck = err.Error()
			}

			w := cmd.OutOrStdout()
			if opts.out == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(w, "key_pair_id:  %s\ndomain:       %s\nmodulus_bits: %d\ndefault_ttl:  %s\nself_check:   %s\n",
					rep.KeyPairID, rep.Domain, rep.ModulusBit, rep.DefaultTTL, rep.SelfCheck)
			}
			if rep.SelfCheck != "ok" {
				return fmt.Errorf("self-check failed")
			}
			return nil
		},
	}
}

// selfCheck firma /check-key y verifica la firma contra la clave pública.
func selfCheck(issuer *cdnsign.Issuer) error {
	signed, err := issuer.Issue("/check-key", time.Minute)
	if err != nil {
		return err
	}
	return cdnsign.VerifyURL(issuer.PublicKey(), signed.URL)
}
