package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	"github.com/hallapmark/vaiki-backend/internal/config"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

const (
	testKeyPairID = "K2JCJMDEHXQW5F"
	testDomain    = "d123abc.cloudfront.net"
	allQuiet      = "all-quiet-on-the-western-front-1930"
)

var (
	testNow = time.Unix(1700000000, 0).UTC()

	testKey = func() *rsa.PrivateKey {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		return k
	}()

	// las métricas HTTP se registran una sola vez por proceso
	testRegistry = prometheus.NewRegistry()
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.Storage.Driver = "memory"
	c.Cache.Kind = "memory"
	c.Cache.CatalogTTL = "30s"
	c.CloudFront.KeyPairID = testKeyPairID
	c.CloudFront.Domain = testDomain
	c.CloudFront.URLTTLSeconds = 3600
	c.Server.CORSAllowedOrigins = []string{"https://vaiki.ee"}
	c.Flags.Seed = true
	return c
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	km, err := cdnsign.NewKeyMaterial(testKeyPairID, testKey)
	require.NoError(t, err)
	iss, err := cdnsign.NewIssuer(cdnsign.SigningConfig{KeyPairID: testKeyPairID, Domain: testDomain},
		km, cdnsign.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	app, err := Build(context.Background(), Deps{
		Config:   cfg,
		Issuer:   iss,
		Registry: testRegistry,
		Gatherer: testRegistry,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type playbackBody struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestCatalogRoutes(t *testing.T) {
	h := newTestApp(t, testConfig()).Handler

	rr := get(t, h, "/api/movies")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	movies := decode[[]map[string]any](t, rr)
	require.Len(t, movies, 2)
	require.Equal(t, allQuiet, movies[0]["slug"])
	require.NotContains(t, rr.Body.String(), "master.m3u8")

	rr = get(t, h, "/api/movies/his-girl-friday")
	require.Equal(t, http.StatusOK, rr.Code)
	movie := decode[map[string]any](t, rr)
	require.Equal(t, "His Girl Friday", movie["title"])
	require.EqualValues(t, 1940, movie["year"])
	require.Equal(t, "https://"+testDomain+"/his-girl-friday/poster.jpg", movie["posterUrl"])

	rr = get(t, h, "/api/movies/nope")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Movie not found", decode[errorBody](t, rr).Message)

	rr = get(t, h, "/api/featured")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, allQuiet, decode[map[string]any](t, rr)["slug"])

	rr = get(t, h, "/api/categories")
	require.Equal(t, http.StatusOK, rr.Code)
	cats := decode[[]map[string]any](t, rr)
	require.Len(t, cats, 3)
	require.Equal(t, []any{"classics", "anti-war", "comedies"}, []any{cats[0]["slug"], cats[1]["slug"], cats[2]["slug"]})
}

func TestFeatured_NoContent(t *testing.T) {
	cfg := testConfig()
	cfg.Flags.Seed = false
	h := newTestApp(t, cfg).Handler

	rr := get(t, h, "/api/featured")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, rr.Body.String())
}

func TestPlaybackURL(t *testing.T) {
	h := newTestApp(t, testConfig()).Handler
	resource := "https://" + testDomain + "/" + allQuiet + "/master.m3u8"

	t.Run("default ttl", func(t *testing.T) {
		rr := get(t, h, "/api/movies/"+allQuiet+"/playback-url")
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

		body := decode[playbackBody](t, rr)
		require.True(t, testNow.Add(time.Hour).Equal(body.ExpiresAt))

		base, rawQuery, ok := strings.Cut(body.URL, "?")
		require.True(t, ok)
		require.Equal(t, resource, base)
		require.True(t, strings.HasPrefix(rawQuery, "Expires=1700003600&Signature="))
		require.True(t, strings.HasSuffix(rawQuery, "&Key-Pair-Id="+testKeyPairID))

		q, err := url.ParseQuery(rawQuery)
		require.NoError(t, err)
		policy, err := cdnsign.BuildPolicy(base, body.ExpiresAt)
		require.NoError(t, err)
		require.NoError(t, cdnsign.VerifyPolicy(&testKey.PublicKey, policy, q.Get("Signature")))
	})

	t.Run("explicit ttl", func(t *testing.T) {
		rr := get(t, h, "/api/movies/"+allQuiet+"/playback-url?ttl=600")
		require.Equal(t, http.StatusOK, rr.Code)
		body := decode[playbackBody](t, rr)
		require.Equal(t, testNow.Unix()+600, body.ExpiresAt.Unix())
		require.Contains(t, body.URL, "Expires="+strconv.FormatInt(testNow.Unix()+600, 10)+"&")
	})

	for _, bad := range []string{"abc", "0", "-5", "1.5", "99999999999"} {
		t.Run("bad ttl "+bad, func(t *testing.T) {
			rr := get(t, h, "/api/movies/"+allQuiet+"/playback-url?ttl="+bad)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, "INVALID_PARAMETER", decode[errorBody](t, rr).Code)
		})
	}

	t.Run("unknown movie", func(t *testing.T) {
		rr := get(t, h, "/api/movies/nope/playback-url")
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Movie not found", decode[errorBody](t, rr).Message)
	})
}

func TestPlaybackURL_NoHLSContent(t *testing.T) {
	app := newTestApp(t, testConfig())
	require.NoError(t, app.Repo.UpsertMovie(context.Background(), &core.Movie{Slug: "coming-soon", Title: "Coming soon"}))

	rr := get(t, app.Handler, "/api/movies/coming-soon/playback-url")
	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decode[errorBody](t, rr)
	require.Equal(t, "NO_HLS_CONTENT", body.Code)
	require.Equal(t, "No HLS content", body.Message)
}

func TestPlaybackURL_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.MaxRequests = 1
	cfg.Rate.Window = "1m"
	h := newTestApp(t, cfg).Handler

	target := "/api/movies/" + allQuiet + "/playback-url"
	require.Equal(t, http.StatusOK, get(t, h, target).Code)

	rr := get(t, h, target)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))

	// el catálogo no está limitado
	require.Equal(t, http.StatusOK, get(t, h, "/api/movies").Code)
}

func TestOpsRoutes(t *testing.T) {
	h := newTestApp(t, testConfig()).Handler

	rr := get(t, h, "/readyz")
	require.Equal(t, http.StatusOK, rr.Code)
	health := decode[map[string]any](t, rr)
	require.Equal(t, "ready", health["status"])
	require.Equal(t, testKeyPairID, health["key_pair_id"])

	require.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	// una emisión para que el contador tenga serie
	require.Equal(t, http.StatusOK, get(t, h, "/api/movies/"+allQuiet+"/playback-url").Code)
	rr = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	b, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Contains(t, string(b), `playback_urls_issued_total{result="ok"}`)
	require.Contains(t, string(b), `path="/api/movies/{slug}/playback-url"`)
	require.NotContains(t, string(b), allQuiet)
}

func TestRouting_Errors(t *testing.T) {
	h := newTestApp(t, testConfig()).Handler

	rr := get(t, h, "/api/nope")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", decode[errorBody](t, rr).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/movies", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/movies", nil)
	req.Header.Set("Origin", "https://vaiki.ee")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "https://vaiki.ee", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuild_RequiresIssuer(t *testing.T) {
	_, err := Build(context.Background(), Deps{Config: testConfig()})
	require.ErrorIs(t, err, cdnsign.ErrConfiguration)
}

func TestPlaybackLimiter_Selection(t *testing.T) {
	cfg := testConfig()
	require.Nil(t, PlaybackLimiter(cfg, nil))

	cfg.Rate.Enabled = true
	cfg.Rate.MaxRequests = 5
	require.NotNil(t, PlaybackLimiter(cfg, nil))
}
