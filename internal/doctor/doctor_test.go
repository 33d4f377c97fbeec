package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		pass  bool
	}{
		{"valid", "123456:AAE-abc_DEF", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"no colon", "123456abc", false},
		{"non numeric id", "bot:secret", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.pass, checkToken(tc.token).Pass)
		})
	}
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckRecognizerReachable(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(server.Close)

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	check := checkRecognizer(context.Background(), endpoint)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "reachable")
}

func TestCheckRecognizerUnreachable(t *testing.T) {
	check := checkRecognizer(context.Background(), "ws://127.0.0.1:1/ws")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "dial failed")
}

func TestCheckRecognizerEmptyEndpoint(t *testing.T) {
	check := checkRecognizer(context.Background(), "")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "ASR_URL is empty")
}

func TestCheckEnhancerFallback(t *testing.T) {
	check := checkEnhancer("")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "fallback")
}

func TestCheckEnhancerReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// A GET against the enhance endpoint is not a valid request,
		// but any non-5xx answer proves the service is alive.
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	t.Cleanup(server.Close)

	check := checkEnhancer(server.URL)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "reachable")
}

func TestCheckEnhancerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	check := checkEnhancer(server.URL)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 503")
}
