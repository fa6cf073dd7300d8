package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func b64(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

func TestJudge0BackendSubmitsAndPolls(t *testing.T) {
	var polls int32
	var received judge0Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		require.Equal(t, "true", r.URL.Query().Get("base64_encoded"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/submissions":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"token":"abc"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/submissions/abc":
			if atomic.AddInt32(&polls, 1) < 3 {
				_, _ = w.Write([]byte(`{"status":{"id":2,"description":"Processing"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":{"id":3,"description":"Accepted"},"stdout":"` + b64("42\n") + `","stderr":null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	backend := NewJudge0Backend(Judge0Config{BaseURL: server.URL, APIKey: "secret", Host: "judge0.test", PollInterval: time.Millisecond, Logger: zerolog.Nop()})

	execution, err := backend.Execute(context.Background(), Submission{SourceCode: "print(42)", Language: "python", Stdin: "in", ExpectedOutput: "42"})
	require.NoError(t, err)
	require.True(t, execution.Accepted())
	require.Equal(t, "Accepted", execution.Status)
	require.Equal(t, "42\n", execution.Stdout)
	require.EqualValues(t, 3, atomic.LoadInt32(&polls))

	require.Equal(t, 71, received.LanguageID)
	require.Equal(t, b64("print(42)"), received.SourceCode)
	require.Equal(t, b64("in"), received.Stdin)
	require.Equal(t, b64("42"), received.ExpectedOutput)
}

func TestJudge0BackendBoundsPolling(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"token":"slow"}`))
			return
		}
		atomic.AddInt32(&polls, 1)
		_, _ = w.Write([]byte(`{"status":{"id":1,"description":"In Queue"}}`))
	}))
	defer server.Close()

	backend := NewJudge0Backend(Judge0Config{BaseURL: server.URL, PollInterval: time.Millisecond, MaxPolls: 4, Logger: zerolog.Nop()})

	_, err := backend.Execute(context.Background(), Submission{SourceCode: "x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrJudgeUnavailable))
	require.EqualValues(t, 4, atomic.LoadInt32(&polls))
}

func TestJudge0BackendRejectsMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	backend := NewJudge0Backend(Judge0Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	_, err := backend.Execute(context.Background(), Submission{})
	require.ErrorIs(t, err, ErrJudgeUnavailable)
	require.True(t, strings.Contains(err.Error(), "token"))
}

func TestJudge0BackendSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(NewJudge0Backend(Judge0Config{BaseURL: server.URL, Logger: zerolog.Nop()}), zerolog.Nop())
	result := client.Evaluate(context.Background(), "code", "cpp", []TestCase{{Input: "1", ExpectedOutput: "1"}})

	require.False(t, result.IsCorrect)
	require.Equal(t, StatusError, result.Status)
	require.Contains(t, result.Outputs[0], "429")
}

func TestDecodeFieldHandlesWrappedBase64(t *testing.T) {
	encoded := b64(strings.Repeat("a", 90))
	wrapped := encoded[:60] + "\n" + encoded[60:]
	require.Equal(t, strings.Repeat("a", 90), decodeField(&wrapped))
	require.Equal(t, "", decodeField(nil))
}
