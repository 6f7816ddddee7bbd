package demoserver

// Config holds configuration for the demo backend.
type Config struct {
	// Port is the port on which the demo backend listens.
	Port int

	// MaxUploadBytes caps a single multipart upload.
	MaxUploadBytes int64
}

// DefaultConfig matches the real backend's port and upload limit.
func DefaultConfig() Config {
	return Config{
		Port:           5000,
		MaxUploadBytes: 500 << 20,
	}
}
