package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souschef/internal/chat"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClientWithConfig(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gemini-test",
		Timeout: 5 * time.Second,
	}, nil)
}

func textResponse(text string) Response {
	return Response{
		Candidates: []Candidate{{
			Content: Content{
				Role:  "model",
				Parts: []Part{{Text: text}},
			},
			FinishReason: "STOP",
		}},
	}
}

func TestGenerateReply_BuildsRoleTaggedTranscript(t *testing.T) {
	var got Request
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(textResponse("simmer for ten minutes"))
	})

	history := []chat.Message{
		{Text: "how do I make soup?", IsUser: true},
		{Text: "start with a stock", IsUser: false},
	}
	reply, err := client.GenerateReply(context.Background(), history, "then what?")
	require.NoError(t, err)
	assert.Equal(t, "simmer for ten minutes", reply)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "user", got.Contents[2].Role)
	assert.Equal(t, "then what?", got.Contents[2].Parts[0].Text)

	require.NotNil(t, got.SystemInstruction)
	assert.NotEmpty(t, got.SystemInstruction.Parts[0].Text)
}

func TestGenerateReply_JoinsMultipleParts(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := textResponse("first")
		resp.Candidates[0].Content.Parts = append(resp.Candidates[0].Content.Parts, Part{Text: " second"})
		json.NewEncoder(w).Encode(resp)
	})

	reply, err := client.GenerateReply(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "first second", reply)
}

func TestGenerateReply_MissingKey(t *testing.T) {
	client := NewClient("", nil)
	_, err := client.GenerateReply(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGenerateReply_ServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
	})

	_, err := client.GenerateReply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestGenerateReply_APIErrorBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Error: &APIError{Code: 403, Message: "key revoked", Status: "PERMISSION_DENIED"}}
		json.NewEncoder(w).Encode(resp)
	})

	_, err := client.GenerateReply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key revoked")
}

func TestGenerateReply_NoCandidates(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{})
	})

	_, err := client.GenerateReply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion")
}

func TestGenerateReply_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(textResponse("ok"))
	})

	reply, err := client.GenerateReply(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateReply_BlankInput(t *testing.T) {
	client := NewClient("key", nil)
	_, err := client.GenerateReply(context.Background(), nil, "   ")
	assert.Error(t, err)
}
