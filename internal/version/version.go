// 包 version：构建信息，发布时通过 -ldflags "-X pip-api/internal/version.Commit=..." 注入
package version

var (
	Version = "dev"
	Commit  = "unknown"
)
