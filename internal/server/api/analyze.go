package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
)

// Analysis limits. A posted sequence is capped at 900 frames, about 30 s at
// 30 fps.
const (
	// maxAnalyzeBody caps the request body in bytes.
	maxAnalyzeBody = 8 << 20
	// defaultFrameGap spaces frames that carry no timestamp.
	defaultFrameGap = 33 * time.Millisecond
)

// AnalyzeHandler runs posted poses through a fresh tracking session. No state
// survives between requests.
type AnalyzeHandler struct {
	opts     tracking.Options
	validate *validator.Validate
}

// NewAnalyzeHandler creates a new AnalyzeHandler using opts for every session.
func NewAnalyzeHandler(opts tracking.Options) *AnalyzeHandler {
	return &AnalyzeHandler{opts: opts, validate: newValidator()}
}

type landmarkRequest struct {
	X          float64  `json:"x" validate:"gte=-1,lte=2"`
	Y          float64  `json:"y" validate:"gte=-1,lte=2"`
	Z          *float64 `json:"z"`
	Visibility float64  `json:"visibility" validate:"gte=0,lte=1"`
}

type frameRequest struct {
	TimestampMS int64             `json:"timestamp_ms" validate:"gte=0"`
	Landmarks   []landmarkRequest `json:"landmarks" validate:"max=64,dive"`
}

// analyzeRequest carries either one pose in Landmarks or a sequence in Frames.
type analyzeRequest struct {
	TimestampMS int64             `json:"timestamp_ms" validate:"gte=0"`
	Landmarks   []landmarkRequest `json:"landmarks" validate:"max=64,dive"`
	Frames      []frameRequest    `json:"frames" validate:"max=900,dive"`
}

type analyzeResponse struct {
	Frames     int                      `json:"frames"`
	Metrics    tracking.Metrics         `json:"metrics"`
	Snapshots  []biomech.ShotSnapshot   `json:"snapshots"`
	Handedness biomech.HandednessResult `json:"handedness"`
}

func (f frameRequest) pose() pose.Pose {
	if len(f.Landmarks) == 0 {
		return nil
	}
	p := make(pose.Pose, len(f.Landmarks))
	for i, l := range f.Landmarks {
		p[i] = pose.Landmark{X: l.X, Y: l.Y, Visibility: l.Visibility}
		if l.Z != nil {
			p[i].Z = *l.Z
			p[i].HasZ = true
		}
	}
	return p
}

// ServeHTTP handles POST /api/analyze.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	frames := req.Frames
	if len(frames) == 0 {
		if req.Landmarks == nil {
			writeError(w, http.StatusBadRequest, "landmarks or frames is required")
			return
		}
		frames = []frameRequest{{TimestampMS: req.TimestampMS, Landmarks: req.Landmarks}}
	}

	writeJSON(w, http.StatusOK, h.analyze(frames, time.Now()))
}

// analyze feeds frames in order. Frames without a timestamp follow the
// previous one by defaultFrameGap, the first one defaults to now.
func (h *AnalyzeHandler) analyze(frames []frameRequest, now time.Time) analyzeResponse {
	session := tracking.New(h.opts)

	var (
		m  tracking.Metrics
		at time.Time
	)
	for i, f := range frames {
		switch {
		case f.TimestampMS > 0:
			at = time.UnixMilli(f.TimestampMS)
		case i == 0:
			at = now
		default:
			at = at.Add(defaultFrameGap)
		}
		m = session.Process(f.pose(), at)
	}

	snapshots := session.Snapshots()
	if snapshots == nil {
		snapshots = []biomech.ShotSnapshot{}
	}
	return analyzeResponse{
		Frames:     len(frames),
		Metrics:    m,
		Snapshots:  snapshots,
		Handedness: session.Handedness(),
	}
}
