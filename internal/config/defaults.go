package config

const (
	defaultWorkDir         = "~/.local/share/polereview/session"
	defaultLogDir          = "~/.local/share/polereview/logs"
	defaultReportDir       = "~/polereview-reports"
	defaultAPIBind         = "127.0.0.1:7621"
	defaultThumbnailSize   = 160
	defaultViewportWidth   = 1200
	defaultViewportHeight  = 800
	defaultDrainIntervalMS = 30
	defaultWorkerCount     = 4
	defaultStrokeWidth     = 4
	defaultMarkedPrefix    = "marked_"
	defaultGridMaxPx       = 600
	defaultModalMaxPx      = 1400
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// defaultChecklistItems are the review checks carried by every pole unless the
// configuration overrides them.
var defaultChecklistItems = []string{
	"pole_tag_legible",
	"full_pole_visible",
	"ground_line_visible",
	"attachment_hardware_visible",
	"clearance_adequate",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
			APIBind:   defaultAPIBind,
		},
		Viewer: Viewer{
			ThumbnailSize:   defaultThumbnailSize,
			ViewportWidth:   defaultViewportWidth,
			ViewportHeight:  defaultViewportHeight,
			DrainIntervalMS: defaultDrainIntervalMS,
			WorkerCount:     defaultWorkerCount,
		},
		Markup: Markup{
			StrokeWidth:  defaultStrokeWidth,
			MarkedPrefix: defaultMarkedPrefix,
		},
		Checklist: Checklist{
			Items: append([]string{}, defaultChecklistItems...),
		},
		Report: Report{
			GridMaxPx:  defaultGridMaxPx,
			ModalMaxPx: defaultModalMaxPx,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
