package config

// Modules is the immutable module selection for a run. A module is a named
// bundle of packages and services that can be toggled independently.
type Modules struct {
	Base     bool `yaml:"base"`
	KDE      bool `yaml:"kde"`
	Dev      bool `yaml:"dev"`
	Gaming   bool `yaml:"gaming"`
	QOL      bool `yaml:"qol"`
	GPU      bool `yaml:"gpu"`
	Audio    bool `yaml:"audio"`
	HW       bool `yaml:"hw"`
	Printing bool `yaml:"printing"`
	Flatpak  bool `yaml:"flatpak"`
	Zerotier bool `yaml:"zerotier"`
}

// ModuleNames lists all module names in their fixed installation order.
var ModuleNames = []string{
	"base", "kde", "dev", "gaming", "qol", "gpu", "audio", "hw", "printing", "flatpak", "zerotier",
}

// AllModules returns a selection with every module enabled, the legacy
// default when no module flags are given.
func AllModules() Modules {
	return Modules{
		Base: true, KDE: true, Dev: true, Gaming: true, QOL: true, GPU: true,
		Audio: true, HW: true, Printing: true, Flatpak: true, Zerotier: true,
	}
}

// On reports whether the named module is enabled.
func (m Modules) On(name string) bool {
	switch name {
	case "base":
		return m.Base
	case "kde":
		return m.KDE
	case "dev":
		return m.Dev
	case "gaming":
		return m.Gaming
	case "qol":
		return m.QOL
	case "gpu":
		return m.GPU
	case "audio":
		return m.Audio
	case "hw":
		return m.HW
	case "printing":
		return m.Printing
	case "flatpak":
		return m.Flatpak
	case "zerotier":
		return m.Zerotier
	default:
		return false
	}
}

// Set enables or disables the named module. Unknown names are ignored.
func (m *Modules) Set(name string, on bool) {
	switch name {
	case "base":
		m.Base = on
	case "kde":
		m.KDE = on
	case "dev":
		m.Dev = on
	case "gaming":
		m.Gaming = on
	case "qol":
		m.QOL = on
	case "gpu":
		m.GPU = on
	case "audio":
		m.Audio = on
	case "hw":
		m.HW = on
	case "printing":
		m.Printing = on
	case "flatpak":
		m.Flatpak = on
	case "zerotier":
		m.Zerotier = on
	}
}

// Enabled returns the enabled module names in installation order.
func (m Modules) Enabled() []string {
	var names []string
	for _, name := range ModuleNames {
		if m.On(name) {
			names = append(names, name)
		}
	}
	return names
}

// Any reports whether at least one module is enabled.
func (m Modules) Any() bool {
	return len(m.Enabled()) > 0
}

// packageCatalog is the fixed candidate package list per module. Order within
// a list is meaningful: it is preserved through deduplication and filtering.
var packageCatalog = map[string][]string{
	"base": {
		"base-devel", "linux-headers", "networkmanager", "openssh", "git",
		"vim", "wget", "curl", "man-db", "man-pages", "bash-completion",
		"pacman-contrib", "xdg-user-dirs",
	},
	"kde": {
		// plasma/wayland group
		"plasma-meta", "sddm", "sddm-kcm", "xdg-desktop-portal-kde",
		"kde-gtk-config", "kscreen",
		// kde apps group
		"konsole", "dolphin", "kate", "ark", "okular", "gwenview",
		"spectacle", "kcalc", "filelight",
	},
	"dev": {
		"git", "base-devel", "cmake", "ninja", "gdb", "python", "python-pip",
		"nodejs", "npm", "go", "rust", "docker", "docker-compose",
	},
	"gaming": {
		"steam", "lutris", "wine-staging", "winetricks", "gamemode",
		"lib32-gamemode", "mangohud", "lib32-mangohud",
	},
	"qol": {
		"htop", "btop", "fastfetch", "ripgrep", "fd", "bat", "tmux", "rsync",
		"unzip", "p7zip", "noto-fonts", "noto-fonts-emoji", "ttf-liberation",
	},
	"gpu": {
		"nvidia", "nvidia-utils", "nvidia-settings", "lib32-nvidia-utils",
		"vulkan-icd-loader", "lib32-vulkan-icd-loader", "egl-wayland",
	},
	"audio": {
		"pipewire", "pipewire-alsa", "pipewire-pulse", "pipewire-jack",
		"wireplumber", "pavucontrol",
	},
	"hw": {
		"bluez", "bluez-utils", "usbutils", "ntfs-3g", "exfatprogs",
		"smartmontools",
	},
	"printing": {
		"cups", "cups-pdf", "ghostscript", "gsfonts", "print-manager",
		"system-config-printer",
	},
	"flatpak":  {"flatpak"},
	"zerotier": {"zerotier-one"},
}

// serviceCatalog maps a module to the units enabled after its packages are
// installed. Enabling is gated on the unit file being present.
var serviceCatalog = map[string][]string{
	"base":     {"NetworkManager.service", "sshd.service"},
	"kde":      {"NetworkManager.service", "sddm.service"},
	"dev":      {"docker.service"},
	"audio":    {"bluetooth.service"},
	"hw":       {"bluetooth.service"},
	"printing": {"cups.socket"},
	"zerotier": {"zerotier-one.service"},
}

// ModulePlan is the resolved installation plan for one module.
type ModulePlan struct {
	// Name of the module.
	Name string
	// Packages that will be installed, duplicate-free, order-stable.
	Packages []string
	// Skipped lists candidates that were dropped because the repositories do
	// not provide them.
	Skipped []string
}

// Packages returns the raw candidate package list for a module.
func Packages(module string) []string {
	return append([]string(nil), packageCatalog[module]...)
}

// Resolve computes the installation plan for every enabled module: the
// candidate list is deduplicated preserving first occurrence and filtered to
// packages the source reports available.
func (m Modules) Resolve(src PackageSource) []ModulePlan {
	var plans []ModulePlan
	for _, name := range m.Enabled() {
		plan := ModulePlan{Name: name}
		seen := make(map[string]bool)
		for _, pkg := range packageCatalog[name] {
			if seen[pkg] {
				continue
			}
			seen[pkg] = true
			if src.IsAvailable(pkg) {
				plan.Packages = append(plan.Packages, pkg)
			} else {
				plan.Skipped = append(plan.Skipped, pkg)
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

// Services returns the units to enable for the enabled modules,
// duplicate-free in module order.
func (m Modules) Services() []string {
	seen := make(map[string]bool)
	var units []string
	for _, name := range m.Enabled() {
		for _, unit := range serviceCatalog[name] {
			if seen[unit] {
				continue
			}
			seen[unit] = true
			units = append(units, unit)
		}
	}
	return units
}
