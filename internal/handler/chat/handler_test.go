package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/contrario/internal/model/persona"
	aiService "github.com/zhouzirui/contrario/internal/service/ai"
	chatservice "github.com/zhouzirui/contrario/internal/service/chat"
	"github.com/zhouzirui/contrario/pkg/api"
)

type fakeGenerator struct {
	mu       sync.Mutex
	requests []aiService.Request
	reply    func(req aiService.Request) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, req aiService.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func setupRouter(gen aiService.Generator, historyLimit int) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	store := persona.NewMemoryStore(persona.Seed())
	handler := New(chatSvc, gen, store, historyLimit)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func postChat(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeReply(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Response)
	return *body.Response
}

func decodeDetail(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}

func TestChatReturnsReplyAndRecordsHistory(t *testing.T) {
	gen := &fakeGenerator{reply: func(req aiService.Request) (string, error) {
		return "no: " + req.UserMessage, nil
	}}
	r, chatSvc := setupRouter(gen, 10)

	resp := postChat(t, r, api.ChatRequest{Message: "il cielo è blu", SessionID: "s1", Persona: "pirata"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "no: il cielo è blu", decodeReply(t, resp))

	resp = postChat(t, r, api.ChatRequest{Message: "davvero", SessionID: "s1", Persona: "pirata"})
	require.Equal(t, http.StatusOK, resp.Code)

	require.Len(t, gen.requests, 2)
	assert.Empty(t, gen.requests[0].History)
	assert.Len(t, gen.requests[1].History, 2)
	assert.Equal(t, persona.Pirata, gen.requests[1].Persona.ID)

	transcript, err := chatSvc.LoadTranscript(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, transcript, 4)
}

func TestChatHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{reply: func(aiService.Request) (string, error) { return "ok", nil }}
	r, _ := setupRouter(gen, 4)

	for i := 0; i < 5; i++ {
		resp := postChat(t, r, api.ChatRequest{Message: fmt.Sprintf("m%d", i), SessionID: "s1", Persona: "bastian"})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	last := gen.requests[len(gen.requests)-1]
	require.Len(t, last.History, 4)
	assert.Equal(t, "m2", last.History[0].Content)
}

func TestChatUnknownPersonaFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: func(aiService.Request) (string, error) { return "ok", nil }}
	r, _ := setupRouter(gen, 10)

	resp := postChat(t, r, api.ChatRequest{Message: "hi", SessionID: "s1", Persona: "ninja"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, persona.Default, gen.requests[0].Persona.ID)
}

func TestChatGeneratorErrorReturnsDetail(t *testing.T) {
	gen := &fakeGenerator{reply: func(aiService.Request) (string, error) { return "", errors.New("boom") }}
	r, chatSvc := setupRouter(gen, 10)

	resp := postChat(t, r, api.ChatRequest{Message: "hi", SessionID: "s1", Persona: "bastian"})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "boom", decodeDetail(t, resp))

	transcript, err := chatSvc.LoadTranscript(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, transcript, "failed exchanges are not recorded")
}

func TestChatSessionPersonaMismatchIsLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	gen := &fakeGenerator{reply: func(aiService.Request) (string, error) { return "ok", nil }}
	r, _ := setupRouter(gen, 10)

	resp := postChat(t, r, api.ChatRequest{Message: "hi", SessionID: "s1", Persona: "pirata"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, buf.String(), "bound_persona")

	resp = postChat(t, r, api.ChatRequest{Message: "hi", SessionID: "s1", Persona: "alieno"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, buf.String(), `"bound_persona":"pirata"`)
	assert.Contains(t, buf.String(), "session reused with a different persona")
	assert.Equal(t, persona.Alieno, gen.requests[1].Persona.ID)
}

func TestChatWithoutGenerator(t *testing.T) {
	r, _ := setupRouter(nil, 10)

	resp := postChat(t, r, api.ChatRequest{Message: "hi", SessionID: "s1", Persona: "bastian"})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "API Key mancante", decodeDetail(t, resp))
}

func TestChatValidation(t *testing.T) {
	gen := &fakeGenerator{reply: func(aiService.Request) (string, error) { return "ok", nil }}
	r, _ := setupRouter(gen, 10)

	cases := map[string]any{
		"malformed":       "{not json",
		"missing message": map[string]string{"session_id": "s1", "persona": "bastian"},
		"missing session": map[string]string{"message": "hi", "persona": "bastian"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postChat(t, r, body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
			assert.NotEmpty(t, decodeDetail(t, resp))
		})
	}
	assert.Empty(t, gen.requests)
}
