package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateViewer(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateViewer() error {
	if c.Viewer.ThumbnailSize > c.Viewer.ViewportWidth {
		return fmt.Errorf("viewer.thumbnail_size (%d) must not exceed viewer.viewport_width (%d)",
			c.Viewer.ThumbnailSize, c.Viewer.ViewportWidth)
	}
	if c.Viewer.WorkerCount > 64 {
		return fmt.Errorf("viewer.worker_count (%d) is unreasonably large; use 64 or fewer", c.Viewer.WorkerCount)
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.GridMaxPx > c.Report.ModalMaxPx {
		return fmt.Errorf("report.grid_max_px (%d) must not exceed report.modal_max_px (%d)",
			c.Report.GridMaxPx, c.Report.ModalMaxPx)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
