package cdnsign

import (
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"
	"github.com/stretchr/testify/require"
)

// El signer del SDK oficial actúa de oráculo: para la misma clave, recurso y
// expiración debe producir el mismo Expires y la misma Signature.
func TestIssue_MatchesSDKURLSigner(t *testing.T) {
	key := rsaTestKey(t)
	now := time.Unix(1700000000, 0)

	iss, err := Bootstrap(BootstrapOptions{
		Config:  SigningConfig{KeyPairID: testKeyPairID, Domain: testDomain},
		Source:  KeySource{Content: pkcs1PEM(t, key)},
		Options: []Option{WithClock(fixedClock(now))},
	})
	require.NoError(t, err)

	for _, p := range []string{"/movie/master.m3u8", "/all-quiet/hls/index.m3u8", "/a/b/c/seg-0001.ts"} {
		got, err := iss.Issue(p, 10*time.Minute)
		require.NoError(t, err)

		ref, err := sign.NewURLSigner(testKeyPairID, key).Sign("https://"+testDomain+p, got.ExpiresAt)
		require.NoError(t, err)

		refURL, err := url.Parse(ref)
		require.NoError(t, err)
		ours, err := url.Parse(got.URL)
		require.NoError(t, err)

		require.Equal(t, refURL.Path, ours.Path)
		require.Equal(t, refURL.Query().Get("Expires"), ours.Query().Get("Expires"))
		require.Equal(t, refURL.Query().Get("Signature"), ours.Query().Get("Signature"))
		require.Equal(t, refURL.Query().Get("Key-Pair-Id"), ours.Query().Get("Key-Pair-Id"))
	}
}
