package cdnsign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Estructura del canned policy de CloudFront. El orden de los campos del
// struct fija el orden de las keys en el JSON; no reordenar.
type cannedPolicy struct {
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Resource  string          `json:"Resource"`
	Condition policyCondition `json:"Condition"`
}

type policyCondition struct {
	DateLessThan epochTime `json:"DateLessThan"`
}

type epochTime struct {
	EpochTime int64 `json:"AWS:EpochTime"`
}

// ResourceURL arma la URL absoluta que pedirá el player. objectPath va tal cual.
func ResourceURL(domain, objectPath string) string {
	return "https://" + domain + objectPath
}

// BuildPolicy devuelve los bytes exactos que se firman:
//
//	{"Statement":[{"Resource":"<url>","Condition":{"DateLessThan":{"AWS:EpochTime":<epoch>}}}]}
//
// JSON compacto, sin escape HTML (un '&' en la URL queda como '&').
// expiresAt se trunca a segundos.
func BuildPolicy(resourceURL string, expiresAt time.Time) ([]byte, error) {
	if resourceURL == "" {
		return nil, fmt.Errorf("%w: empty resource url", ErrValidation)
	}
	// encoding/json cambiaría los bytes inválidos por U+FFFD y el policy
	// firmado dejaría de coincidir con la URL
	if !utf8.ValidString(resourceURL) {
		return nil, fmt.Errorf("%w: resource url is not valid UTF-8", ErrValidation)
	}
	p := cannedPolicy{
		Statement: []policyStatement{{
			Resource: resourceURL,
			Condition: policyCondition{
				DateLessThan: epochTime{EpochTime: expiresAt.Unix()},
			},
		}},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	// Encode agrega '\n' al final
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
