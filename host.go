package lspbin

import (
	"encoding/json"
)

// Status is an installation status transition reported to the host while a
// language server binary is being resolved.
type Status int

const (
	// StatusNone means nothing is in progress; reported after a successful resolution.
	StatusNone Status = iota
	// StatusCheckingForUpdate is reported before the release feed is queried.
	StatusCheckingForUpdate
	// StatusDownloading is reported before a release asset is downloaded.
	StatusDownloading
	// StatusFailed is reported when a resolution attempt fails.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusCheckingForUpdate:
		return "checking for update"
	case StatusDownloading:
		return "downloading"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settings holds the per server configuration blobs the host keeps for the language
// server. They are opaque and passed through verbatim.
type Settings struct {
	InitializationOptions json.RawMessage
	Workspace             json.RawMessage
}

// Host is the lookup context an editor integration provides to the manager.
type Host interface {
	// Which searches the execution search path for an executable.
	Which(name string) (string, bool)
	// Platform returns the operating system and architecture identifiers.
	Platform() (os, arch string)
	// SetStatus reports an installation status transition.
	SetStatus(status Status)
	// Settings returns the configuration the host keeps for a language server.
	Settings(serverID string) (Settings, error)
}
