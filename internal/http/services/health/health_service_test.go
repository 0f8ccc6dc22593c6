package health

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hallapmark/vaiki-backend/internal/cache"
	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

const testKeyPairID = "K2JCJMDEHXQW5F"

var testKey = func() *rsa.PrivateKey {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return k
}()

func newIssuer(t *testing.T, signer crypto.Signer) *cdnsign.Issuer {
	t.Helper()
	km, err := cdnsign.NewKeyMaterial(testKeyPairID, signer)
	require.NoError(t, err)
	iss, err := cdnsign.NewIssuer(cdnsign.SigningConfig{KeyPairID: testKeyPairID, Domain: "d123abc.cloudfront.net"}, km)
	require.NoError(t, err)
	return iss
}

// brokenSigner expone la clave pública correcta pero nunca firma.
type brokenSigner struct{ pub crypto.PublicKey }

func (b brokenSigner) Public() crypto.PublicKey { return b.pub }
func (brokenSigner) Sign(io.Reader, []byte, crypto.SignerOpts) ([]byte, error) {
	return nil, errors.New("device unplugged")
}

// wrongKeySigner firma con otra clave: la verificación tiene que fallar.
type wrongKeySigner struct {
	pub   crypto.PublicKey
	other *rsa.PrivateKey
}

func (w wrongKeySigner) Public() crypto.PublicKey { return w.pub }
func (w wrongKeySigner) Sign(r io.Reader, d []byte, o crypto.SignerOpts) ([]byte, error) {
	return w.other.Sign(r, d, o)
}

func okCheck(context.Context) error { return nil }

func TestCheck_Ready(t *testing.T) {
	svc := NewHealthService(Deps{
		Issuer:      newIssuer(t, testKey),
		StoreCheck:  okCheck,
		StoreDriver: "memory",
		Cache:       cache.NewMemory("", 0),
	})
	res := svc.Check(context.Background())

	require.Equal(t, "ready", res.Status)
	require.Equal(t, testKeyPairID, res.KeyPairID)
	require.Equal(t, "ok", res.Components["signer"].Status)
	require.Equal(t, "ok", res.Components["storage"].Status)
	require.Equal(t, "ok", res.Components["cache"].Status)
}

func TestCheck_SignerFailuresAreCritical(t *testing.T) {
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name   string
		signer crypto.Signer
		msg    string
	}{
		{"signing error", brokenSigner{pub: testKey.Public()}, "sign failed"},
		{"signature does not verify", wrongKeySigner{pub: testKey.Public(), other: other}, "verify failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewHealthService(Deps{Issuer: newIssuer(t, tc.signer), StoreCheck: okCheck})
			res := svc.Check(context.Background())
			require.Equal(t, "unavailable", res.Status)
			require.Equal(t, "error", res.Components["signer"].Status)
			require.Contains(t, res.Components["signer"].Message, tc.msg)
		})
	}
}

func TestCheck_NoIssuer(t *testing.T) {
	res := NewHealthService(Deps{StoreCheck: okCheck}).Check(context.Background())
	require.Equal(t, "unavailable", res.Status)
	require.Equal(t, "disabled", res.Components["cache"].Status)
}

func TestCheck_StorageDownIsCritical(t *testing.T) {
	svc := NewHealthService(Deps{
		Issuer:     newIssuer(t, testKey),
		StoreCheck: func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	res := svc.Check(context.Background())
	require.Equal(t, "unavailable", res.Status)
	require.Contains(t, res.Components["storage"].Message, "refused")
}

type downCache struct{ cache.Client }

func (downCache) Ping(context.Context) error { return errors.New("redis: connection pool timeout") }

func TestCheck_CacheDownDegrades(t *testing.T) {
	svc := NewHealthService(Deps{
		Issuer:     newIssuer(t, testKey),
		StoreCheck: okCheck,
		Cache:      downCache{},
	})
	res := svc.Check(context.Background())
	require.Equal(t, "degraded", res.Status)
	require.Equal(t, "error", res.Components["cache"].Status)
}
