package cdnsign

import "errors"

var (
	// ErrConfiguration: config incompleta o contradictoria (ambas fuentes de clave, sin dominio, etc.). Fatal al arrancar.
	ErrConfiguration = errors.New("cdnsign: invalid configuration")
	// ErrKeyLoad: la clave no se pudo leer/decodificar/parsear. Fatal al arrancar.
	ErrKeyLoad = errors.New("cdnsign: cannot load private key")
	// ErrValidation: input inválido del caller (objectPath vacío). Se rechaza antes de firmar.
	ErrValidation = errors.New("cdnsign: invalid request")
	// ErrSigning: falló la operación criptográfica. No se reintenta.
	ErrSigning = errors.New("cdnsign: signing failed")
)

// IsFatal indica si el error corresponde a la fase de arranque (config o clave).
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrKeyLoad)
}
