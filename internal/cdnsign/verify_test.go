package cdnsign

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyURL(t *testing.T) {
	iss, _ := newTestIssuer(t, WithClock(fixedClock(time.Unix(1700000000, 0))))
	signed, err := iss.Issue("/movie/master.m3u8", 10*time.Minute)
	require.NoError(t, err)

	require.NoError(t, VerifyURL(iss.PublicKey(), signed.URL))

	t.Run("path with its own query", func(t *testing.T) {
		withQuery, err := iss.Issue("/movie/master.m3u8?v=2", 10*time.Minute)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(withQuery.URL, "https://"+testDomain+"/movie/master.m3u8?v=2?Expires="))
		require.NoError(t, VerifyURL(iss.PublicKey(), withQuery.URL))
	})

	t.Run("invalid utf-8 resource", func(t *testing.T) {
		bad := strings.Replace(signed.URL, "/movie/", "/movie\xff/", 1)
		require.ErrorIs(t, VerifyURL(iss.PublicKey(), bad), ErrValidation)
	})

	t.Run("tampered expires", func(t *testing.T) {
		bad := strings.Replace(signed.URL, "Expires=1700000600", "Expires=1800000600", 1)
		require.Error(t, VerifyURL(iss.PublicKey(), bad))
	})

	t.Run("tampered path", func(t *testing.T) {
		bad := strings.Replace(signed.URL, "/movie/", "/other/", 1)
		require.Error(t, VerifyURL(iss.PublicKey(), bad))
	})

	t.Run("other key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		require.Error(t, VerifyURL(&other.PublicKey, signed.URL))
	})

	t.Run("malformed", func(t *testing.T) {
		for _, u := range []string{
			"https://" + testDomain + "/movie/master.m3u8",
			"https://" + testDomain + "/movie/master.m3u8?Expires=soon&Signature=x",
			"https://" + testDomain + "/movie/master.m3u8?Expires=1700000600",
		} {
			require.ErrorIs(t, VerifyURL(iss.PublicKey(), u), ErrValidation, u)
		}
	})
}
