package phase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJackConflictKeepsInstalledProvider(t *testing.T) {
	src := &fakeSource{
		available: map[string]bool{
			"ttf-liberation": true, "noto-fonts": true, "phonon-qt6-vlc": true,
			"pipewire": true, "pipewire-alsa": true, "pipewire-pulse": true,
			"pipewire-jack": true, "wireplumber": true,
		},
		installed: map[string]bool{"jack2": true},
	}
	run := testRun(src, &fakeServices{})

	p := &PreinstallProviders{}
	require.NoError(t, p.Prepare(run))
	require.NoError(t, p.Run())

	installed := src.installedAll()
	require.NotContains(t, installed, "pipewire-jack", "must not swap the installed jack provider")
	require.Contains(t, installed, "pipewire")
	require.Contains(t, installed, "pipewire-pulse")
	require.Contains(t, installed, "wireplumber")
}

func TestJackProviderDefaultsToPipewire(t *testing.T) {
	src := &fakeSource{
		available: map[string]bool{
			"ttf-liberation": true, "noto-fonts": true, "phonon-qt6-vlc": true,
			"pipewire": true, "pipewire-alsa": true, "pipewire-pulse": true,
			"pipewire-jack": true, "wireplumber": true,
		},
	}
	run := testRun(src, &fakeServices{})

	p := &PreinstallProviders{}
	require.NoError(t, p.Prepare(run))
	require.NoError(t, p.Run())

	require.Contains(t, src.installedAll(), "pipewire-jack")
}
