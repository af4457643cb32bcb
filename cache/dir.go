package cache

import (
	"os"
	"path"

	"github.com/adrg/xdg"
)

// Dir returns the directory where archup caches VM images, downloads and
// other temporary files. Root gets the system-wide cache, regular users get
// their XDG cache home.
func Dir() string {
	if os.Geteuid() == 0 {
		return "/var/cache/archup"
	}
	return path.Join(xdg.CacheHome, "archup")
}
