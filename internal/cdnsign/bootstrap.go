package cdnsign

// BootstrapOptions agrupa todo lo necesario para dejar el subsistema listo.
type BootstrapOptions struct {
	Config  SigningConfig
	Source  KeySource
	Options []Option
}

// Bootstrap valida la config, carga la clave y construye el Issuer.
// Es todo o nada: si devuelve error no hay Issuer y el proceso no debe servir
// (no existe un modo degradado que entregue URLs sin firmar).
func Bootstrap(o BootstrapOptions) (*Issuer, error) {
	cfg := o.Config.withDefaults()
	// Config primero: no tocar la clave si la config ya es inválida.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := LoadKey(cfg.KeyPairID, o.Source)
	if err != nil {
		return nil, err
	}
	return NewIssuer(cfg, key, o.Options...)
}
