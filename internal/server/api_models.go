package server

// StatusResponse is returned by GET /healthz.
type StatusResponse struct {
	Status  string      `json:"status"`
	Backend string      `json:"backend"`
	Routes  []RouteInfo `json:"routes"`
}

// RouteInfo describes one panel route as served under the base path.
type RouteInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Href string `json:"href"`
}

// ErrorResponse is a uniform error payload returned by the server.
type ErrorResponse struct {
	Error string `json:"error"`
}
