package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the effective configuration, defaults applied.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}
	if cfg == nil {
		cfg = &Config{}
	}

	imageBase := cfg.ImageBaseURL
	if imageBase == "" {
		imageBase = "(relative)"
	}
	publicDir := cfg.PublicDir
	if publicDir == "" {
		publicDir = "(not checked)"
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:          %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Results Dir:    %s\n", cfg.ResultsRoot())
	fmt.Fprintf(out, "  Result Marker:  %s\n", cfg.ResultMarker())
	fmt.Fprintf(out, "  Output Path:    %s\n", cfg.CanonicalPath())
	fmt.Fprintf(out, "  Datasets Path:  %s\n", cfg.DatasetRegistryPath())
	fmt.Fprintf(out, "  Methods Path:   %s\n", cfg.MethodRegistryPath())
	fmt.Fprintf(out, "  Image Base URL: %s\n", imageBase)
	fmt.Fprintf(out, "  Public Dir:     %s\n", publicDir)
	fmt.Fprintf(out, "  Listen Addr:    %s\n", cfg.Listen())
	fmt.Fprintf(out, "  Log File:       %s\n", cfg.LogFilePath())
}
