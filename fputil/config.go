/*
Copyright © 2019 the fluxprint authors.
This file is part of fluxprint.

fluxprint is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fluxprint is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fluxprint.  If not, see <http://www.gnu.org/licenses/>.
*/

package fputil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fluxprint"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// SiteConfig returns the site configuration, either read from the TOML
// file given by the SiteFile option or assembled from the Site.*
// options.
func SiteConfig(cfg *viper.Viper) (*fluxprint.SiteConfig, error) {
	if path := os.ExpandEnv(cfg.GetString("SiteFile")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("fluxprint: opening site file: %v", err)
		}
		defer f.Close()
		return fluxprint.LoadSiteConfig(f)
	}

	names := []string{"MeasurementHeight", "RoughnessHeight", "XMax", "YMax", "Dx",
		"SensorX", "SensorY", "ReferenceTemperature"}
	vals := make([]float64, len(names))
	for i, name := range names {
		v, err := cast.ToFloat64E(cfg.Get("Site." + name))
		if err != nil {
			return nil, fmt.Errorf("fluxprint: reading 'Site.%s': %v", name, err)
		}
		vals[i] = v
	}
	c := &fluxprint.SiteConfig{
		MeasurementHeight:    vals[0],
		RoughnessHeight:      vals[1],
		XMax:                 vals[2],
		YMax:                 vals[3],
		Dx:                   vals[4],
		SensorX:              vals[5],
		SensorY:              vals[6],
		ReferenceTemperature: vals[7],
	}
	if c.SensorX < 0 {
		c.SensorX = c.XMax
	}
	if c.SensorY < 0 {
		c.SensorY = c.YMax
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseTime parses a yymmddHHMM time. An empty string gives the zero
// time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(fluxprint.TimeLayout, s)
	if err != nil {
		return t, fmt.Errorf("fluxprint: time %q should be in yymmddHHMM format: %v", s, err)
	}
	return t, nil
}

// numWorkers returns the configured number of parallel workers.
func numWorkers(cfg *viper.Viper) (int, error) {
	n, err := cast.ToIntE(cfg.Get("Workers"))
	if err != nil {
		return 0, fmt.Errorf("fluxprint: reading 'Workers': %v", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("fluxprint: Workers=%d but should be >=0", n)
	}
	return n, nil
}

// newLogger returns a logger that writes to the command output and,
// if logFile is not empty, to logFile. The returned function closes the
// log file.
func newLogger(cmd *cobra.Command, logFile, level string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("fluxprint: %v", err)
	}
	log := logrus.New()
	log.Level = lvl
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	}
	log.Out = cmd.OutOrStdout()
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.Create(os.ExpandEnv(logFile))
		if err != nil {
			return nil, nil, fmt.Errorf("fluxprint: problem creating log file: %v", err)
		}
		log.Out = io.MultiWriter(cmd.OutOrStdout(), f)
		closer = f.Close
	}
	return log, closer, nil
}
