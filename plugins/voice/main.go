// Package main provides a text-to-speech plugin that reads coaching cues
// aloud. It uses say on macOS, espeak-ng, espeak or spd-say on Linux and
// System.Speech through PowerShell on Windows.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Cue    string          `json:"cue"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type speakParams struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`
}

// voiceConfig is the optional per-binding config.
type voiceConfig struct {
	Voice string `json:"voice"`
}

type actionHandler func(req Request) (json.RawMessage, error)

var actionHandlers = map[string]actionHandler{
	"speak": speak,
	"stop":  stop,
}

var errNoEngine = errors.New("no speech engine found")

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	data, err := handler(req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse(data)
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse(data json.RawMessage) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

func speak(req Request) (json.RawMessage, error) {
	var p speakParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		return nil, errors.New("text is required")
	}
	if p.Rate <= 0 {
		p.Rate = 1
	}
	if p.Volume <= 0 || p.Volume > 1 {
		p.Volume = 1
	}

	var cfg voiceConfig
	if len(req.Config) > 0 {
		json.Unmarshal(req.Config, &cfg)
	}

	name, args, err := speechCommand(runtime.GOOS, p, cfg)
	if err != nil {
		return nil, err
	}
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", name, err, strings.TrimSpace(string(out)))
	}

	return json.Marshal(map[string]string{"engine": name, "cue": req.Cue})
}

// stop silences any speech still playing from an earlier cue.
func stop(Request) (json.RawMessage, error) {
	switch runtime.GOOS {
	case "darwin":
		exec.Command("killall", "say").Run()
	case "linux":
		exec.Command("pkill", "-f", "espeak").Run()
		if _, err := exec.LookPath("spd-say"); err == nil {
			exec.Command("spd-say", "--cancel").Run()
		}
	}
	return nil, nil
}

// speechCommand picks the engine for goos and translates rate and volume to
// its flags. Rate 1 is normal speed.
func speechCommand(goos string, p speakParams, cfg voiceConfig) (string, []string, error) {
	lang := p.Lang
	if lang == "" {
		lang = "fr-FR"
	}

	switch goos {
	case "darwin":
		// say speaks around 175 words per minute by default.
		args := []string{"-r", itoa(175 * p.Rate)}
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		// say has no volume flag; the embedded command sets it.
		text := fmt.Sprintf("[[volm %.2f]] %s", p.Volume, p.Text)
		return "say", append(args, text), nil

	case "linux":
		voice := cfg.Voice
		if voice == "" {
			voice = strings.ToLower(strings.SplitN(lang, "-", 2)[0])
		}
		for _, engine := range []string{"espeak-ng", "espeak"} {
			if _, err := exec.LookPath(engine); err == nil {
				return engine, []string{
					"-v", voice,
					"-s", itoa(160 * p.Rate),
					"-a", itoa(200 * p.Volume),
					p.Text,
				}, nil
			}
		}
		if _, err := exec.LookPath("spd-say"); err == nil {
			return "spd-say", []string{
				"-w",
				"-l", voice,
				"-r", itoa((p.Rate - 1) * 100),
				"-i", itoa((p.Volume*2 - 1) * 100),
				p.Text,
			}, nil
		}
		return "", nil, errNoEngine

	case "windows":
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Speech; "+
				"$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; "+
				"$s.Rate = %d; $s.Volume = %d; $s.Speak('%s')",
			int(math.Round((p.Rate-1)*10)), int(math.Round(p.Volume*100)), strings.ReplaceAll(p.Text, "'", "''"))
		return "powershell", []string{"-NoProfile", "-Command", script}, nil
	}

	return "", nil, fmt.Errorf("%w for %s", errNoEngine, goos)
}

func itoa(f float64) string {
	return strconv.Itoa(int(math.Round(f)))
}
