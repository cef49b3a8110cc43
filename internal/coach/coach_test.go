package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt_FallbackWhenEmpty(t *testing.T) {
	prompt := SystemPrompt("")
	assert.True(t, strings.HasSuffix(prompt, "MEMORY CONTEXT:\nNo workout history yet."))

	prompt = SystemPrompt("- Bench 185x5")
	assert.True(t, strings.HasSuffix(prompt, "MEMORY CONTEXT:\n- Bench 185x5"))
	assert.NotContains(t, prompt, NoHistory)
}

func TestBuildMessages_Order(t *testing.T) {
	history := []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Content: "hi"},
		{Role: domain.ChatRoleAssistant, Content: "hello"},
	}
	msgs := buildMessages("bench 200x3", "", history)

	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, chatMessage{Role: "user", Content: "hi"}, msgs[1])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "hello"}, msgs[2])
	assert.Equal(t, chatMessage{Role: "user", Content: "bench 200x3"}, msgs[3])
}

func TestRespond(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, "- Squat 315x5")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Logged: squat 315x5. Nice work!"}}]}`))
	}))
	defer ts.Close()

	reply, err := NewResponder(ts.URL+"/", "sk-test", "").Respond(context.Background(), "squat 315x5", "- Squat 315x5", nil)
	require.NoError(t, err)
	assert.Equal(t, "Logged: squat 315x5. Nice work!", reply)
}

func TestRespond_ProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached for gpt-4o-mini"}}`))
	}))
	defer ts.Close()

	_, err := NewResponder(ts.URL, "sk-test", "").Respond(context.Background(), "hi", "", nil)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "Rate limit reached for gpt-4o-mini", pe.Message)
}

func TestRespond_EmptyReply(t *testing.T) {
	for _, body := range []string{
		`{"choices":[]}`,
		`{"choices":[{"message":{"role":"assistant","content":""}}]}`,
		`{"choices":[{"message":{"role":"assistant","content":null}}]}`,
		`{"choices":[{"message":{"role":"assistant","content":"  \n"}}]}`,
	} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := NewResponder(ts.URL, "", "").Respond(context.Background(), "hi", "", nil)
		assert.ErrorIs(t, err, ErrEmptyReply, body)
		ts.Close()
	}
}

func TestParseProviderError_StatusFallback(t *testing.T) {
	assert.Equal(t, "authentication failed, check your API key", parseProviderError(401, []byte("nope")))
	assert.Equal(t, "HTTP 418: teapot", parseProviderError(418, []byte("teapot")))
}
