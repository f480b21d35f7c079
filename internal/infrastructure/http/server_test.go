package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/usecases"
)

// vocabEmbedder counts vocabulary terms so related texts score high and
// unrelated texts score zero.
type vocabEmbedder struct{ vocab []string }

func (e vocabEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	low := strings.ToLower(text)
	vec := make([]float32, len(e.vocab))
	for i, term := range e.vocab {
		vec[i] = float32(strings.Count(low, term))
	}
	return vec, nil
}

func (e vocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

type cannedLLM struct {
	answer string
	err    error
}

func (l cannedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.answer, l.err
}

type staticSource struct{ docs []entities.Document }

func (s staticSource) Load(ctx context.Context, dir string) ([]entities.Document, []string, error) {
	return s.docs, nil, nil
}

func newTestServer(t *testing.T, model cannedLLM) *Server {
	t.Helper()
	embedder := vocabEmbedder{vocab: []string{"horário", "atendimento"}}
	orch := usecases.NewOrchestrator(
		staticSource{docs: []entities.Document{
			{ID: "d1", Name: "horarios.pdf", Content: "Horário de atendimento: 9h às 17h"},
		}},
		usecases.NewBuilder(embedder, usecases.NewChunker(1000, 200)),
		usecases.NewRetriever(embedder, 5, 0.3),
		usecases.NewAssembler(12000),
		model,
		nil,
		"documents",
		4,
	)
	return NewServer(orch, ":0")
}

func doJSON(t *testing.T, handler nethttp.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "ok"})
	rec, body := doJSON(t, server.Handler(), "GET", "/api/health", "")

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestStatus_TransitionsAfterReload(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "ok"})
	handler := server.Handler()

	rec, body := doJSON(t, handler, "GET", "/api/status", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "not_ready", body["status"])

	rec, _ = doJSON(t, handler, "POST", "/api/reload", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, body = doJSON(t, handler, "GET", "/api/status", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestChat_BeforeReloadIsServiceUnavailable(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "ok"})
	rec, body := doJSON(t, server.Handler(), "POST", "/api/chat",
		`{"message":"Qual o horário de atendimento?"}`)

	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestChat_AnswersAfterReload(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "O atendimento é das 9h às 17h."})
	handler := server.Handler()

	rec, _ := doJSON(t, handler, "POST", "/api/reload", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, body := doJSON(t, handler, "POST", "/api/chat",
		`{"message":"Qual o horário de atendimento?"}`)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "O atendimento é das 9h às 17h.", body["response"])
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "ok"})
	handler := server.Handler()

	for _, payload := range []string{`{"message":""}`, `{"message":"   "}`, `{not json`} {
		rec, body := doJSON(t, handler, "POST", "/api/chat", payload)
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code, "payload: %s", payload)
		assert.NotEmpty(t, body["error"])
	}
}

func TestChat_ModelFailureStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", entities.ErrModelUnavailable, nethttp.StatusBadGateway},
		{"timeout", entities.ErrModelTimeout, nethttp.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, cannedLLM{err: tc.err})
			handler := server.Handler()

			rec, _ := doJSON(t, handler, "POST", "/api/reload", "")
			require.Equal(t, nethttp.StatusOK, rec.Code)

			rec, body := doJSON(t, handler, "POST", "/api/chat",
				`{"message":"Qual o horário de atendimento?"}`)
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReload_EmptyCorpusFails(t *testing.T) {
	embedder := vocabEmbedder{vocab: []string{"horário"}}
	orch := usecases.NewOrchestrator(
		staticSource{},
		usecases.NewBuilder(embedder, usecases.NewChunker(1000, 200)),
		usecases.NewRetriever(embedder, 5, 0.3),
		usecases.NewAssembler(12000),
		cannedLLM{answer: "ok"},
		nil,
		"documents",
		4,
	)
	server := NewServer(orch, ":0")

	rec, body := doJSON(t, server.Handler(), "POST", "/api/reload", "")
	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestCORSHeaders(t *testing.T) {
	server := newTestServer(t, cannedLLM{answer: "ok"})
	rec, _ := doJSON(t, server.Handler(), "GET", "/api/health", "")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
