package rowkit

// Version is the rowkit release. Release builds set it with
// -ldflags "-X github.com/mesh-intelligence/rowkit/pkg/rowkit.Version=...".
var Version = "0.1.0"
