// signurl es la CLI de operador para el subsistema de firma: emite URLs,
// muestra el canned policy exacto y valida la clave configurada.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hallapmark/vaiki-backend/internal/config"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

type globalOpts struct {
	configPath string
	envOnly    bool
	envFile    string
	out        string // text | json
}

func (o *globalOpts) load() (*config.Config, error) {
	if o.envFile != "" {
		_ = godotenv.Load(o.envFile)
	}
	cfg, _, err := config.Resolve(o.configPath, o.envOnly)
	return cfg, err
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "signurl",
		Short:         "Firma URLs de reproducción con canned policy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.out != "text" && opts.out != "json" {
				return fmt.Errorf("--out debe ser text|json (got %q)", opts.out)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "ruta a config.yaml (fallback: $CONFIG_PATH, configs/config.yaml, env)")
	root.PersistentFlags().BoolVar(&opts.envOnly, "env", false, "usar SOLO variables de entorno")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")
	root.PersistentFlags().StringVar(&opts.out, "out", "text", "formato de salida: text|json")

	root.AddCommand(newIssueCmd(opts), newPolicyCmd(opts), newCheckKeyCmd(opts))
	return root
}

func main() {
	logger.Init(logger.Config{Env: "dev", Level: "warn"})
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
