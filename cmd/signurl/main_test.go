package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

const (
	testKeyPairID = "K2JCJMDEHXQW5F"
	testDomain    = "d123abc.cloudfront.net"
)

func setSigningEnv(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	t.Setenv("CLOUDFRONT_KEY_PAIR_ID", testKeyPairID)
	t.Setenv("CLOUDFRONT_DOMAIN", testDomain)
	t.Setenv("CLOUDFRONT_PRIVATE_KEY_CONTENT", string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})))
	return key
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env", "--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestIssue_JSON(t *testing.T) {
	key := setSigningEnv(t)

	out, err := execute(t, "issue", "--path", "/his-girl-friday/master.m3u8", "--ttl", "600",
		"--at", "2023-11-14T22:13:20Z", "--out", "json")
	require.NoError(t, err)

	var got cdnsign.SignedURL
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, int64(1700000600), got.ExpiresAt.Unix())
	require.Contains(t, got.URL, "https://"+testDomain+"/his-girl-friday/master.m3u8?Expires=1700000600&Signature=")
	require.NotContains(t, out, `\u0026`)
	require.NoError(t, cdnsign.VerifyURL(&key.PublicKey, got.URL))
}

func TestIssue_InvalidPath(t *testing.T) {
	setSigningEnv(t)
	_, err := execute(t, "issue", "--path", "relative/master.m3u8")
	require.ErrorIs(t, err, cdnsign.ErrValidation)
}

func TestIssue_MissingKey(t *testing.T) {
	t.Setenv("CLOUDFRONT_KEY_PAIR_ID", testKeyPairID)
	t.Setenv("CLOUDFRONT_DOMAIN", testDomain)
	_, err := execute(t, "issue", "--path", "/x/master.m3u8")
	require.True(t, cdnsign.IsFatal(err), "got %v", err)
}

func TestPolicy(t *testing.T) {
	out, err := execute(t, "policy", "--domain", testDomain, "--path", "/movie/master.m3u8", "--expires", "1700000600")
	require.NoError(t, err)
	require.Equal(t,
		`{"Statement":[{"Resource":"https://d123abc.cloudfront.net/movie/master.m3u8","Condition":{"DateLessThan":{"AWS:EpochTime":1700000600}}}]}`+"\n",
		out)

	out2, err := execute(t, "policy", "--domain", testDomain, "--path", "/movie/master.m3u8",
		"--expires", time.Unix(1700000600, 0).UTC().Format(time.RFC3339))
	require.NoError(t, err)
	require.Equal(t, out, out2)

	_, err = execute(t, "policy", "--domain", testDomain, "--path", "/movie/master.m3u8", "--expires", "tomorrow")
	require.Error(t, err)
}

func TestCheckKey(t *testing.T) {
	setSigningEnv(t)
	out, err := execute(t, "check-key", "--out", "json")
	require.NoError(t, err)

	var rep keyReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, testKeyPairID, rep.KeyPairID)
	require.Equal(t, 2048, rep.ModulusBit)
	require.Equal(t, "ok", rep.SelfCheck)
	require.Equal(t, "1h0m0s", rep.DefaultTTL)
}

func TestRoot_BadOutFormat(t *testing.T) {
	_, err := execute(t, "policy", "--domain", testDomain, "--path", "/a", "--expires", "1", "--out", "yaml")
	require.Error(t, err)
}
