package cdnsign

import (
	"crypto/rsa"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// VerifyURL verifica una URL canned como lo haría el edge: reconstruye el
// policy desde el recurso y Expires, y valida Signature con la clave pública.
// No mira el reloj: una URL vencida pero bien firmada verifica.
func VerifyURL(pub *rsa.PublicKey, signedURL string) error {
	// el path puede traer su propio '?': la query firmada empieza en el último "?Expires="
	i := strings.LastIndex(signedURL, "?Expires=")
	if i < 0 {
		return fmt.Errorf("%w: signed url has no Expires", ErrValidation)
	}
	resource := signedURL[:i]
	q, err := url.ParseQuery(signedURL[i+1:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	epoch, err := strconv.ParseInt(q.Get("Expires"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad Expires: %w", ErrValidation, err)
	}
	sig := q.Get("Signature")
	if sig == "" {
		return fmt.Errorf("%w: missing Signature", ErrValidation)
	}
	policy, err := BuildPolicy(resource, time.Unix(epoch, 0))
	if err != nil {
		return err
	}
	return VerifyPolicy(pub, policy, sig)
}
