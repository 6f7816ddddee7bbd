// Package api wraps the gesture backend's REST surface in typed calls issued
// through a webclient.Client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/raysh454/gesturepanel/internal/webclient"
)

// API is the typed backend client.
type API struct {
	client *webclient.Client
}

// New wraps client. Paths are relative to the client's base URL.
func New(client *webclient.Client) *API {
	return &API{client: client}
}

// Health checks that the backend is up.
func (a *API) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := a.getJSON(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConfig returns one module's mapping.
func (a *API) GetConfig(ctx context.Context, module Module) (*ModuleConfig, error) {
	var out ModuleConfig
	path := "/config?module=" + url.QueryEscape(string(module))
	if err := a.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllConfig returns every module's mapping.
func (a *API) GetAllConfig(ctx context.Context) (map[Module]ModuleConfig, error) {
	out := map[Module]ModuleConfig{}
	if err := a.getJSON(ctx, "/config", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateConfig merges cfg into the module's mapping.
func (a *API) UpdateConfig(ctx context.Context, module Module, cfg ModuleConfig) (*ConfigResult, error) {
	var out ConfigResult
	if err := a.postJSON(ctx, "/config", ConfigUpdate{Module: module, Config: cfg}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetConfig restores the defaults for module, or for everything when
// module is empty.
func (a *API) ResetConfig(ctx context.Context, module Module) (*ConfigResult, error) {
	var out ConfigResult
	if err := a.postJSON(ctx, "/config/reset", ConfigReset{Module: module}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recognize submits one frame for gesture recognition.
func (a *API) Recognize(ctx context.Context, image string, drawLandmarks bool) (*Recognition, error) {
	var out Recognition
	if err := a.postJSON(ctx, "/gesture/recognize", RecognizeRequest{Image: image, DrawLandmarks: drawLandmarks}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GestureAction looks up the action bound to a gesture.
func (a *API) GestureAction(ctx context.Context, module Module, gesture string) (*GestureAction, error) {
	var out GestureAction
	if err := a.postJSON(ctx, "/gesture/action", ActionQuery{Module: module, Gesture: gesture}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadVideo uploads a video file.
func (a *API) UploadVideo(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	return a.upload(ctx, "/upload/video", filename, data)
}

// UploadPresentation uploads a slide deck.
func (a *API) UploadPresentation(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	return a.upload(ctx, "/upload/ppt", filename, data)
}

// ListFiles lists uploaded files of a kind.
func (a *API) ListFiles(ctx context.Context, kind FileKind) ([]FileInfo, error) {
	var out FileList
	if err := a.getJSON(ctx, "/files/"+url.PathEscape(string(kind)), &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// ErrorMessage returns the backend's "error" field from a server-error
// failure, or "" if err carries none.
func ErrorMessage(err error) string {
	f, ok := webclient.AsFailure(err)
	if !ok || f.Kind != webclient.KindServerError || f.Response == nil {
		return ""
	}
	if !gjson.ValidBytes(f.Response.Body) {
		return ""
	}
	return gjson.GetBytes(f.Response.Body, "error").String()
}

func (a *API) getJSON(ctx context.Context, path string, out any) error {
	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (a *API) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := a.client.PostJSON(ctx, path, body)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (a *API) upload(ctx context.Context, path, filename string, data []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := a.client.Do(ctx, webclient.Request{
		Method:  http.MethodPost,
		URL:     path,
		Headers: http.Header{"Content-Type": {mw.FormDataContentType()}},
		Body:    buf.Bytes(),
	})
	if err != nil {
		return nil, err
	}
	var out UploadResult
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decode(resp *webclient.Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
