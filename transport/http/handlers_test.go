package http

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/whisperbox/adapters/directory"
	"github.com/layer-3/whisperbox/adapters/store"
	"github.com/layer-3/whisperbox/adapters/tokenizer"
	"github.com/layer-3/whisperbox/adapters/verifier"
	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/sealbox"
	"github.com/layer-3/whisperbox/service"
)

type testServer struct {
	router  *gin.Engine
	dir     *directory.Memory
	owner   ed25519.PrivateKey
	ownerID string
	keys    sealbox.Keypair
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ownerID := base58.Encode(pub)

	keys, err := sealbox.GenerateKeypair()
	require.NoError(t, err)

	dir := directory.NewMemory()
	require.NoError(t, dir.Register(&core.Profile{
		Handle:       "alice",
		Owner:        ownerID,
		EncPublicKey: keys.Public,
	}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	auth := service.NewAuthService(dir, store.NewMemory(), verifier.NewEd25519(), log)
	mailbox := service.NewMailboxService(dir, store.NewMemory(), nil, log)
	tok := tokenizer.NewJWTTokenizer([]byte("test-secret"))

	h := NewHandlers(auth, mailbox, dir, tok, log)
	return &testServer{
		router:  SetupRouter(h),
		dir:     dir,
		owner:   priv,
		ownerID: ownerID,
		keys:    *keys,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (s *testServer) postMessage(t *testing.T, plaintext, nickname string) float64 {
	t.Helper()
	sealed, err := sealbox.Seal([]byte(plaintext), s.keys.Public)
	require.NoError(t, err)

	rec, body := s.do(t, http.MethodPost, "/message", gin.H{
		"handle":     "alice",
		"ciphertext": base64.StdEncoding.EncodeToString(sealed.Ciphertext),
		"nonce":      base64.StdEncoding.EncodeToString(sealed.Nonce[:]),
		"epk":        base64.StdEncoding.EncodeToString(sealed.EphemeralKey[:]),
		"nickname":   nickname,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body["id"].(float64)
}

// authorize runs the full challenge round trip and returns the inbox response.
func (s *testServer) authorize(t *testing.T) map[string]any {
	t.Helper()
	rec, challenge := s.do(t, http.MethodGet, "/challenge?handle=alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	signature := ed25519.Sign(s.owner, []byte(challenge["message"].(string)))
	rec, body := s.do(t, http.MethodPost, "/inbox", gin.H{
		"handle":    "alice",
		"identity":  s.ownerID,
		"signature": base58.Encode(signature),
		"nonce":     challenge["nonce"],
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}

func TestGetProfile(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/profile/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", body["handle"])
	assert.Equal(t, s.ownerID, body["owner"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(s.keys.Public[:]), body["enc_pk"])

	rec, _ = s.do(t, http.MethodGet, "/profile/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnerProfiles(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.dir.Register(&core.Profile{Handle: "alice2", Owner: s.ownerID}))

	rec, body := s.do(t, http.MethodGet, "/profiles/owner/"+s.ownerID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profiles := body["profiles"].([]any)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alice", profiles[0].(map[string]any)["handle"])
	assert.Equal(t, "alice2", profiles[1].(map[string]any)["handle"])

	rec, body = s.do(t, http.MethodGet, "/profiles/owner/unknown-identity", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["profiles"])
}

func TestPostMessage(t *testing.T) {
	s := newTestServer(t)

	id := s.postMessage(t, "hello", "bob")
	assert.Equal(t, float64(1), id)
	id = s.postMessage(t, "again", "")
	assert.Equal(t, float64(2), id)
}

func TestPostMessageRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/message", gin.H{"handle": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/message", gin.H{
		"handle":     "alice",
		"ciphertext": "!!! not base64 !!!",
		"nonce":      base64.StdEncoding.EncodeToString(make([]byte, 24)),
		"epk":        base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nonce of the wrong length survives decoding but fails validation.
	rec, _ = s.do(t, http.MethodPost, "/message", gin.H{
		"handle":     "alice",
		"ciphertext": base64.StdEncoding.EncodeToString(make([]byte, 64)),
		"nonce":      base64.StdEncoding.EncodeToString(make([]byte, 12)),
		"epk":        base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/message", gin.H{
		"handle":     "nobody",
		"ciphertext": base64.StdEncoding.EncodeToString(make([]byte, 64)),
		"nonce":      base64.StdEncoding.EncodeToString(make([]byte, 24)),
		"epk":        base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChallengeUnknownHandle(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/challenge?handle=nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInboxFlow(t *testing.T) {
	s := newTestServer(t)
	s.postMessage(t, "hello", "bob")
	s.postMessage(t, "world", "")

	body := s.authorize(t)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)

	first := msgs[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "bob", first["nickname"])

	ciphertext, err := base64.StdEncoding.DecodeString(first["ciphertext"].(string))
	require.NoError(t, err)
	nonce, err := sealbox.DecodeNonce(first["nonce"].(string))
	require.NoError(t, err)
	epk, err := sealbox.DecodeKey(first["epk"].(string))
	require.NoError(t, err)

	plain, err := sealbox.Open(ciphertext, nonce, epk, s.keys.Secret)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestInboxDenialsAreUniform(t *testing.T) {
	s := newTestServer(t)

	// Unknown nonce, bad signature and right signature for the wrong
	// identity must be indistinguishable from the outside.
	rec, challenge := s.do(t, http.MethodGet, "/challenge?handle=alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	intruderPub, intruderPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	cases := []gin.H{
		{
			"handle":    "alice",
			"identity":  s.ownerID,
			"signature": base58.Encode(make([]byte, 64)),
			"nonce":     "no-such-nonce",
		},
		{
			"handle":    "alice",
			"identity":  s.ownerID,
			"signature": base58.Encode(make([]byte, 64)),
			"nonce":     challenge["nonce"],
		},
		{
			"handle":    "alice",
			"identity":  base58.Encode(intruderPub),
			"signature": base58.Encode(ed25519.Sign(intruderPriv, []byte(challenge["message"].(string)))),
			"nonce":     challenge["nonce"],
		},
	}
	for _, payload := range cases {
		rec, body := s.do(t, http.MethodPost, "/inbox", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, map[string]any{"error": "access denied"}, body)
	}
}

func TestInboxChallengeSingleUse(t *testing.T) {
	s := newTestServer(t)

	rec, challenge := s.do(t, http.MethodGet, "/challenge?handle=alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	signature := base58.Encode(ed25519.Sign(s.owner, []byte(challenge["message"].(string))))
	payload := gin.H{
		"handle":    "alice",
		"identity":  s.ownerID,
		"signature": signature,
		"nonce":     challenge["nonce"],
	}

	rec, _ = s.do(t, http.MethodPost, "/inbox", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := s.do(t, http.MethodPost, "/inbox", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "access denied"}, body)
}

func TestInboxAccessToken(t *testing.T) {
	s := newTestServer(t)
	s.postMessage(t, "hello", "bob")

	body := s.authorize(t)
	token, ok := body["access_token"].(string)
	require.True(t, ok, "signed listing should issue an access token")
	assert.NotZero(t, body["expires_at"])

	// The token replaces a fresh signature for subsequent listings.
	rec, body := s.do(t, http.MethodGet, "/inbox/alice", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["messages"], 1)

	// But only for the handle it was granted for.
	rec, _ = s.do(t, http.MethodGet, "/inbox/bob", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInboxTokenRequired(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/inbox/alice", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "access denied"}, body)

	rec, _ = s.do(t, http.MethodGet, "/inbox/alice", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
