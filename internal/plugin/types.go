// Package plugin discovers and runs the external processes that deliver
// coaching cues, such as the text-to-speech voice plugin.
package plugin

import "encoding/json"

// ActionSpeak is the action every voice plugin implements.
const ActionSpeak = "speak"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the plugin declares action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Cue    string          `json:"cue,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// SpeakParams are the params of a speak request.
type SpeakParams struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// Default delivery for spoken cues: slightly faster than normal speech so a
// correction lands before the next shot.
const (
	DefaultSpeechRate   = 1.15
	DefaultSpeechVolume = 0.9
)

// NewSpeakRequest builds a speak request for a cue.
func NewSpeakRequest(cue string, params SpeakParams, config json.RawMessage) (*Request, error) {
	if params.Rate == 0 {
		params.Rate = DefaultSpeechRate
	}
	if params.Volume == 0 {
		params.Volume = DefaultSpeechVolume
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Request{
		Action: ActionSpeak,
		Cue:    cue,
		Config: config,
		Params: raw,
	}, nil
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
