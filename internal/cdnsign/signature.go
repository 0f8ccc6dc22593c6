package cdnsign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// La CDN no usa el alfabeto base64url estándar sino esta transliteración fija.
var (
	signatureEncoder = strings.NewReplacer("+", "-", "=", "_", "/", "~")
	signatureDecoder = strings.NewReplacer("-", "+", "_", "=", "~", "/")
)

// SignPolicy firma con RSA PKCS#1 v1.5 sobre SHA-1 del policy.
// SHA-1 lo impone la verificación de canned policy de la CDN.
func SignPolicy(signer crypto.Signer, policy []byte) ([]byte, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: nil signer", ErrSigning)
	}
	digest := sha1.Sum(policy)
	sig, err := signer.Sign(rand.Reader, digest[:], crypto.SHA1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrSigning)
	}
	return sig, nil
}

// EncodeSignature: base64 estándar y luego '+'→'-', '='→'_', '/'→'~'.
func EncodeSignature(raw []byte) string {
	return signatureEncoder.Replace(base64.StdEncoding.EncodeToString(raw))
}

// DecodeSignature revierte EncodeSignature.
func DecodeSignature(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(signatureDecoder.Replace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature: %w", ErrValidation, err)
	}
	return raw, nil
}

// VerifyPolicy hace lo mismo que el edge: decodifica la firma y la verifica
// contra el policy con la clave pública.
func VerifyPolicy(pub *rsa.PublicKey, policy []byte, encodedSignature string) error {
	raw, err := DecodeSignature(encodedSignature)
	if err != nil {
		return err
	}
	digest := sha1.Sum(policy)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest[:], raw)
}
