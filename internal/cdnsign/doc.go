// Package cdnsign emite URLs firmadas con "canned policy" para la CDN (CloudFront).
//
// # Flujo
//
//	Bootstrap (una vez, al arrancar)
//	  └─ LoadKey: PEM (inline o archivo) → KeyMaterial, o error fatal
//	Issue (por request, concurrente)
//	  ├─ BuildPolicy: {"Statement":[{"Resource":...,"Condition":{"DateLessThan":{"AWS:EpochTime":N}}}]}
//	  ├─ SignPolicy:  RSA PKCS#1 v1.5 sobre SHA-1 (lo exige la CDN)
//	  └─ EncodeSignature: base64 estándar + '+'→'-', '='→'_', '/'→'~'
//
// El Issuer es inmutable después de construirse: no hay locks, caches ni
// contadores compartidos entre llamadas. Dos llamadas casi simultáneas para el
// mismo path pueden devolver firmas distintas (distinto Expires) y es correcto.
//
// # Uso
//
//	iss, err := cdnsign.Bootstrap(cdnsign.BootstrapOptions{
//	    Config: cdnsign.SigningConfig{KeyPairID: "K2JCJMDEHXQW5F", Domain: "d123abc.cloudfront.net"},
//	    Source: cdnsign.KeySource{File: "/etc/vaiki/cf.pem"},
//	})
//	if err != nil {
//	    log.Fatalf("cloudfront signer: %v", err)
//	}
//	res, err := iss.Issue("/metropolis/master.m3u8", 0) // 0 => TTL por defecto
package cdnsign
