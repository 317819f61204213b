package model

// VersionInfo describes the running build, served by /api/system/version.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}
