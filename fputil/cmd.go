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

// Package fputil contains the command-line interface and configuration
// handling for fluxprint.
package fputil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/fluxprint"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to fluxprint.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to a file where log messages
              are written in addition to standard output. If it is empty,
              messages only go to standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the least severe level of log messages that are
              written: debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of footprints or groups calculated in
              parallel. Zero uses one worker per processor.`,
			shorthand:  "w",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), groupCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where footprint grid files and
              their mean are written.`,
			shorthand:  "o",
			defaultVal: "footprints",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MetFile",
			usage: `
              MetFile is the table of turbulence statistics to calculate
              footprints for.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MetFormat",
			usage: `
              MetFormat is the format of MetFile: "table" for the
              tab-separated footprint model input table or "eddypro" for
              the comma-separated EddyPro essentials output.`,
			defaultVal: "table",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Begin",
			usage: `
              Begin is the time (yymmddHHMM) of the first record to
              include. If it is empty, the table is read from its start.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "End",
			usage: `
              End is the time (yymmddHHMM) before which records are
              included. If it is empty, the table is read to its end.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Filter",
			usage: `
              Filter is an expression that selects the records to include,
              for example "ustar > 0.1 && abs(L) < 1000". The variables
              wd, wspd, sigmav, ustar, L, H, rho, key and hour and the
              functions abs and isnan are available.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SiteFile",
			usage: `
              SiteFile is a TOML file describing the site. If it is given,
              the Site.* options are ignored.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.MeasurementHeight",
			usage: `
              Site.MeasurementHeight is the sensor height above the
              zero-plane displacement height in meters.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.RoughnessHeight",
			usage: `
              Site.RoughnessHeight is the aerodynamic roughness length in
              meters.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.XMax",
			usage: `
              Site.XMax is half the east-west extent of the footprint grid
              in meters.`,
			defaultVal: 150.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.YMax",
			usage: `
              Site.YMax is half the north-south extent of the footprint
              grid in meters.`,
			defaultVal: 150.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.Dx",
			usage: `
              Site.Dx is the grid cell edge length in meters.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.SensorX",
			usage: `
              Site.SensorX is the east-west sensor location within the grid
              in meters. A negative value places the sensor in the centre.`,
			defaultVal: -1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.SensorY",
			usage: `
              Site.SensorY is the north-south sensor location within the
              grid in meters. A negative value places the sensor in the
              centre.`,
			defaultVal: -1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Site.ReferenceTemperature",
			usage: `
              Site.ReferenceTemperature is the air temperature in Kelvin
              used to derive the Obukhov length from the sensible heat
              flux.`,
			defaultVal: fluxprint.DefaultReferenceTemperature,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GridDir",
			usage: `
              GridDir is the directory holding the footprint grid files
              to be grouped.`,
			defaultVal: "footprints",
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "GroupOutputDir",
			usage: `
              GroupOutputDir is the directory where group averages are
              written. It must differ from GridDir, or the averages would
              be grouped again on the next run.`,
			shorthand:  "o",
			defaultVal: filepath.Join("footprints", "groups"),
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "GroupBy",
			usage: `
              GroupBy selects how grids are grouped: "hour" for hour of
              day, "day" for date or "custom" for the lists in
              GroupListDir.`,
			shorthand:  "g",
			defaultVal: "hour",
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "GroupListDir",
			usage: `
              GroupListDir holds one "<group>.txt" file per custom group,
              each listing the names of its member grids one per line.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "LegacyHeader",
			usage: `
              LegacyHeader writes averaged grids with the fixed 150×150
              header expected by older tools. Only use it for grids with
              those dimensions.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize is the number of parsed grid files kept in memory
              for groups that share members.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
		{
			name: "NetCDFFile",
			usage: `
              NetCDFFile, if given, is a netCDF file where all group
              averages are additionally written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{groupCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FLUXPRINT")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(groupCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fluxprint: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fluxprint",
	Short: "A flux footprint calculator.",
	Long: `fluxprint calculates flux footprints of eddy covariance measurements
with the Kormann and Meixner (2001) analytical model and groups and averages
the resulting footprint grids. Use the subcommands specified below to access
the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FLUXPRINT_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of fluxprint.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("fluxprint v%s\n", fluxprint.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd calculates footprints for a table of turbulence statistics.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate footprints.",
	Long: `run calculates the footprint of every record in MetFile and writes
each one to OutputDir as <yymmddHHMM>.grd, together with mean.grd, the
average footprint of all records. Records that cannot be used are
reported and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger(cmd, Cfg.GetString("LogFile"), Cfg.GetString("LogLevel"))
		if err != nil {
			return err
		}
		defer closeLog()

		site, err := SiteConfig(Cfg)
		if err != nil {
			return err
		}
		begin, err := parseTime(Cfg.GetString("Begin"))
		if err != nil {
			return err
		}
		end, err := parseTime(Cfg.GetString("End"))
		if err != nil {
			return err
		}
		workers, err := numWorkers(Cfg)
		if err != nil {
			return err
		}
		return Run(log, os.ExpandEnv(Cfg.GetString("MetFile")), Cfg.GetString("MetFormat"),
			&fluxprint.Batch{
				Site:      site,
				Workers:   workers,
				Begin:     begin,
				End:       end,
				OutputDir: os.ExpandEnv(Cfg.GetString("OutputDir")),
			}, Cfg.GetString("Filter"))
	},
	DisableAutoGenTag: true,
}

// groupCmd groups and averages footprint grids.
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group and average footprints.",
	Long: `group sorts the footprint grids in GridDir into groups by hour of
day, by date or by custom lists and writes the average grid of each
group to GroupOutputDir as <group>.grd. A group whose grids differ in shape
is reported and skipped; the other groups are still written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger(cmd, Cfg.GetString("LogFile"), Cfg.GetString("LogLevel"))
		if err != nil {
			return err
		}
		defer closeLog()

		workers, err := numWorkers(Cfg)
		if err != nil {
			return err
		}
		cacheSize, err := cast.ToIntE(Cfg.Get("CacheSize"))
		if err != nil {
			return fmt.Errorf("fluxprint: reading 'CacheSize': %v", err)
		}
		return Group(log,
			os.ExpandEnv(Cfg.GetString("GridDir")),
			Cfg.GetString("GroupBy"),
			os.ExpandEnv(Cfg.GetString("GroupListDir")),
			os.ExpandEnv(Cfg.GetString("NetCDFFile")),
			fluxprint.AverageOptions{
				OutputDir:    os.ExpandEnv(Cfg.GetString("GroupOutputDir")),
				LegacyHeader: Cfg.GetBool("LegacyHeader"),
				Workers:      workers,
				CacheSize:    cacheSize,
			})
	},
	DisableAutoGenTag: true,
}
