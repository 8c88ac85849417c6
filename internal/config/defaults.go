package config

const (
	defaultConfigPath         = "~/.config/trisetra/config.toml"
	defaultEndpoint           = "http://localhost:4000/cvat"
	defaultToken              = "trisetra_test"
	defaultRetryAttempts      = 3
	defaultRetryBaseMillis    = 250
	defaultRetryMaxMillis     = 2000
	defaultBurst              = 1
	defaultStateDir           = "~/.local/share/trisetra"
	defaultLogDir             = "~/.local/share/trisetra/logs"
	defaultPanoramaFilename   = "combined_room_camera_geometry_preview.png"
	defaultPanoramaURL        = "https://www.trisetra.com/panorama/"
	defaultMaxConcurrentLoads = 4
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultWatchInterval      = 15
)

func defaultMeshExtensions() []string {
	return []string{".ply", ".glb", ".obj"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Remote: Remote{
			Endpoint:        defaultEndpoint,
			Token:           defaultToken,
			RetryAttempts:   defaultRetryAttempts,
			RetryBaseMillis: defaultRetryBaseMillis,
			RetryMaxMillis:  defaultRetryMaxMillis,
			Burst:           defaultBurst,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Previews: Previews{
			MeshExtensions:     defaultMeshExtensions(),
			PanoramaFilename:   defaultPanoramaFilename,
			PanoramaURL:        defaultPanoramaURL,
			MaxConcurrentLoads: defaultMaxConcurrentLoads,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			IntervalSeconds: defaultWatchInterval,
		},
	}
}
