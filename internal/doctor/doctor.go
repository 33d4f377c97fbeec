// Package doctor runs runtime readiness diagnostics for config, tools, and engines.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"scribebot/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var tokenShape = regexp.MustCompile(`^\d+:[\w-]+$`)

// Run executes environment/config/engine checks for a loaded config.
func Run(ctx context.Context, cfg config.Config) Report {
	checks := []Check{
		checkToken(cfg.TelegramToken),
		checkBinary(cfg.FFmpegPath, "transcoder available"),
		checkRecognizer(ctx, cfg.ASRURL),
		checkEnhancer(cfg.EnhanceURL),
	}
	return Report{Checks: checks}
}

// checkToken validates the bot token shape without calling the platform.
func checkToken(token string) Check {
	token = strings.TrimSpace(token)
	if token == "" {
		return Check{Name: "telegram.token", Pass: false, Message: "TELEGRAM_TOKEN is empty"}
	}
	if !tokenShape.MatchString(token) {
		return Check{Name: "telegram.token", Pass: false, Message: "TELEGRAM_TOKEN does not look like <bot-id>:<secret>"}
	}
	return Check{Name: "telegram.token", Pass: true, Message: "token shape is valid"}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkRecognizer dials the recognizer WebSocket endpoint and hangs up.
func checkRecognizer(ctx context.Context, endpoint string) Check {
	if strings.TrimSpace(endpoint) == "" {
		return Check{Name: "asr.endpoint", Pass: false, Message: "ASR_URL is empty"}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, endpoint, nil)
	if err != nil {
		return Check{Name: "asr.endpoint", Pass: false, Message: fmt.Sprintf("dial failed: %v", err)}
	}
	_ = conn.Close()
	return Check{Name: "asr.endpoint", Pass: true, Message: fmt.Sprintf("reachable at %s", endpoint)}
}

// checkEnhancer probes the enhancement service; an empty URL selects the
// in-process fallback and always passes.
func checkEnhancer(endpoint string) Check {
	if strings.TrimSpace(endpoint) == "" {
		return Check{Name: "enhance.endpoint", Pass: true, Message: "ENHANCE_URL is empty, using in-process fallback"}
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(endpoint)
	if err != nil {
		return Check{Name: "enhance.endpoint", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Check{Name: "enhance.endpoint", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, endpoint)}
	}
	return Check{Name: "enhance.endpoint", Pass: true, Message: fmt.Sprintf("reachable at %s", endpoint)}
}
