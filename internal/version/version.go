package version

// Set at build time via -ldflags "-X streambot/internal/version.Version=...".
var (
	AppName = "StreamBot"
	Version = "dev"
)
