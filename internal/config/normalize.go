package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeViewer()
	c.normalizeMarkup()
	c.normalizeChecklist()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeViewer() {
	if c.Viewer.ThumbnailSize <= 0 {
		c.Viewer.ThumbnailSize = defaultThumbnailSize
	}
	if c.Viewer.ViewportWidth <= 0 {
		c.Viewer.ViewportWidth = defaultViewportWidth
	}
	if c.Viewer.ViewportHeight <= 0 {
		c.Viewer.ViewportHeight = defaultViewportHeight
	}
	if c.Viewer.DrainIntervalMS <= 0 {
		c.Viewer.DrainIntervalMS = defaultDrainIntervalMS
	}
	if c.Viewer.WorkerCount <= 0 {
		c.Viewer.WorkerCount = defaultWorkerCount
	}
}

func (c *Config) normalizeMarkup() {
	if c.Markup.StrokeWidth <= 0 {
		c.Markup.StrokeWidth = defaultStrokeWidth
	}
	c.Markup.MarkedPrefix = strings.TrimSpace(c.Markup.MarkedPrefix)
	if c.Markup.MarkedPrefix == "" {
		c.Markup.MarkedPrefix = defaultMarkedPrefix
	}
}

func (c *Config) normalizeChecklist() {
	items := make([]string, 0, len(c.Checklist.Items))
	seen := map[string]struct{}{}
	for _, item := range c.Checklist.Items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		items = append(items, trimmed)
	}
	if len(items) == 0 {
		items = append(items, defaultChecklistItems...)
	}
	c.Checklist.Items = items
}

func (c *Config) normalizeReport() {
	if c.Report.GridMaxPx <= 0 {
		c.Report.GridMaxPx = defaultGridMaxPx
	}
	if c.Report.ModalMaxPx <= 0 {
		c.Report.ModalMaxPx = defaultModalMaxPx
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
