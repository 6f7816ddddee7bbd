package api

// Module names a controllable surface on the backend.
type Module string

const (
	ModulePPT   Module = "ppt"
	ModuleVideo Module = "video"
)

// FileKind selects an uploaded-file listing.
type FileKind string

const (
	FileKindVideos        FileKind = "videos"
	FileKindPresentations FileKind = "presentations"
)

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ModuleConfig maps gestures to actions and actions to keyboard shortcuts.
type ModuleConfig struct {
	Gestures          map[string]string `json:"gestures"`
	KeyboardShortcuts map[string]string `json:"keyboard_shortcuts"`
}

// ConfigUpdate is the body of POST /config.
type ConfigUpdate struct {
	Module Module       `json:"module"`
	Config ModuleConfig `json:"config"`
}

// ConfigReset is the body of POST /config/reset. An empty module resets
// everything.
type ConfigReset struct {
	Module Module `json:"module,omitempty"`
}

// ConfigResult is returned by config update/reset.
type ConfigResult struct {
	Message string       `json:"message"`
	Config  ModuleConfig `json:"config"`
}

// ActionQuery is the body of POST /gesture/action.
type ActionQuery struct {
	Module  Module `json:"module"`
	Gesture string `json:"gesture"`
}

// GestureAction is the action bound to a gesture; Action and
// KeyboardShortcut are nil when the gesture is unmapped.
type GestureAction struct {
	Gesture          string  `json:"gesture"`
	Action           *string `json:"action"`
	KeyboardShortcut *string `json:"keyboard_shortcut"`
}

// RecognizeRequest is the body of POST /gesture/recognize. Image is base64,
// optionally as a data URL.
type RecognizeRequest struct {
	Image         string `json:"image"`
	DrawLandmarks bool   `json:"draw_landmarks,omitempty"`
}

// Recognition is the backend's per-frame result.
type Recognition struct {
	HandDetected     bool     `json:"hand_detected"`
	StaticGesture    *string  `json:"static_gesture"`
	StaticGestureID  int      `json:"static_gesture_id"`
	DynamicGesture   *string  `json:"dynamic_gesture"`
	DynamicGestureID int      `json:"dynamic_gesture_id"`
	Landmarks        [][2]int `json:"landmarks"`
	BoundingRect     []int    `json:"bounding_rect"`
	Handedness       string   `json:"handedness,omitempty"`
	AnnotatedImage   string   `json:"annotated_image,omitempty"`
}

// UploadResult is returned by the upload endpoints.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// FileInfo is one uploaded file.
type FileInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// FileList is returned by GET /files/{kind}.
type FileList struct {
	Files []FileInfo `json:"files"`
}
