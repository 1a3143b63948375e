package deskforge

import "context"

// DesktopEnv is the operator's desktop environment choice.
type DesktopEnv int

const (
	DesktopKDE DesktopEnv = iota
	DesktopGnome
	DesktopXfce
	DesktopMinimal
)

func (d DesktopEnv) String() string {
	switch d {
	case DesktopKDE:
		return "kde"
	case DesktopGnome:
		return "gnome"
	case DesktopXfce:
		return "xfce"
	}
	return "minimal"
}

// DisplayManager is the operator's display manager choice.
type DisplayManager int

const (
	DMSddm DisplayManager = iota
	DMGdm
	DMNone
)

func (d DisplayManager) String() string {
	switch d {
	case DMSddm:
		return "sddm"
	case DMGdm:
		return "gdm"
	}
	return "none"
}

// serviceName is the systemd unit enabled for the display manager.
func (d DisplayManager) serviceName() string {
	switch d {
	case DMSddm:
		return "sddm.service"
	case DMGdm:
		return "gdm.service"
	}
	return ""
}

// Selection is set once, before the pipeline runs, and read-only afterwards.
type Selection struct {
	Desktop        DesktopEnv
	DisplayManager DisplayManager
}

func defaultSelection() Selection {
	return Selection{Desktop: DesktopKDE, DisplayManager: DMSddm}
}

var (
	desktopLabels = []string{"KDE Plasma", "GNOME", "XFCE", "Minimal (no desktop)"}
	dmLabels      = []string{"sddm", "gdm", "none"}

	desktopByLabel = map[string]DesktopEnv{
		"KDE Plasma":           DesktopKDE,
		"GNOME":                DesktopGnome,
		"XFCE":                 DesktopXfce,
		"Minimal (no desktop)": DesktopMinimal,
	}
	dmByLabel = map[string]DisplayManager{
		"sddm": DMSddm,
		"gdm":  DMGdm,
		"none": DMNone,
	}
)

// chooseSelection gathers the run's Selection. Non-interactive runs and the
// none backend take the defaults; a cancelled or unrecognized answer falls
// back to the default for that field instead of failing the run.
func chooseSelection(ctx context.Context, ui UI, interactive bool) Selection {
	sel := defaultSelection()
	if !interactive || ui.Backend() == BackendNone {
		logInfof("Using default selection: desktop=%s, display manager=%s",
			sel.Desktop, sel.DisplayManager)
		return sel
	}

	if label, err := ui.Choose(ctx, "Choose a desktop environment", desktopLabels); err == nil {
		if de, ok := desktopByLabel[label]; ok {
			sel.Desktop = de
		}
	}
	if label, err := ui.Choose(ctx, "Choose a display manager", dmLabels); err == nil {
		if dm, ok := dmByLabel[label]; ok {
			sel.DisplayManager = dm
		}
	}

	logInfof("Selection: desktop=%s, display manager=%s", sel.Desktop, sel.DisplayManager)
	return sel
}
