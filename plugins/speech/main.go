// Package main provides the speech plugin. It voices a response with the
// platform text-to-speech command: say on macOS, espeak elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Source  string          `json:"source"`
	Subject string          `json:"subject"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SpeakParams defines parameters for the speak action.
type SpeakParams struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// sayVoices maps language tags to voices shipped with macOS.
var sayVoices = map[string]string{
	"en": "Samantha",
	"id": "Damayanti",
	"ms": "Amira",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "speak":
		if err := handleSpeak(req.Params); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

func handleSpeak(params json.RawMessage) error {
	var p SpeakParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		return fmt.Errorf("text is required")
	}

	name, args := buildCommand(runtime.GOOS, p.Text, p.Lang)
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// buildCommand returns the TTS program and arguments for goos.
func buildCommand(goos, text, lang string) (string, []string) {
	base := strings.ToLower(strings.SplitN(lang, "-", 2)[0])

	if goos == "darwin" {
		if voice, ok := sayVoices[base]; ok {
			return "say", []string{"-v", voice, text}
		}
		return "say", []string{text}
	}

	if lang == "" {
		return "espeak", []string{text}
	}
	return "espeak", []string{"-v", strings.ToLower(lang), text}
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: false,
		Error:   errMsg,
	})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: true,
	})
}
