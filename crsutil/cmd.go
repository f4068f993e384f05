/*
Copyright © 2017 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package crsutil contains the command-line interface for converting
// coordinates between datums and coordinate reference systems.
package crsutil

import (
	"context"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/crs"
	"github.com/spatialmodel/crs/nad"
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
	// Options are the configuration options available to the crs command.
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
			name: "loglevel",
			usage: `
              loglevel specifies the level of diagnostic messages to print:
              one of panic, fatal, error, warning, info, debug or trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridSearchPaths",
			usage: `
              GridSearchPaths specifies the directories that are searched, in
              order, for grid shift files. Environment variables in the
              paths are expanded.`,
			defaultVal: []string{"."},
			flagsets:   []*pflag.FlagSet{transformCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "GridBucket",
			usage: `
              GridBucket specifies a blob storage bucket to read grid shift files
              from instead of GridSearchPaths, in the format 'provider://name'.
              The accepted providers are "file" and "mem".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "From",
			usage: `
              From specifies the coordinate reference system of the input
              coordinates, as a Proj4 string or Esri well-known text.`,
			defaultVal: "+proj=longlat +datum=WGS84 +no_defs",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
		{
			name: "To",
			usage: `
              To specifies the coordinate reference system of the output
              coordinates, as a Proj4 string or Esri well-known text.`,
			defaultVal: "+proj=longlat +datum=WGS84 +no_defs",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
		{
			name: "Pipeline",
			usage: `
              Pipeline specifies a TOML file holding the datum transformation
              stages to use. If it is empty, the transformation is derived from
              the datums of From and To.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
		{
			name: "Input",
			usage: `
              Input specifies the file to read 'longitude latitude [height]'
              lines from. Standard input is used if it is empty or "-".`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output specifies the file to write converted coordinates to.
              Standard output is used if it is empty or "-".`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
		{
			name: "Inverse",
			usage: `
              Inverse specifies whether to convert from To to From instead of
              from From to To. Pipeline stages are run in reverse.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{transformCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CRS")

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
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	Cfg.AutomaticEnv()
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(transformCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(convertCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and applies the logging configuration.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("crs: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("crs: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "crs",
	Short: "Convert coordinates between datums.",
	Long: `crs converts geographic coordinates between geodetic datums using
Helmert transformations and grid shift files, and converts coordinate
reference system definitions between Proj4 strings and Esri well-known text.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CRS_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of crs.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("crs v%s\n", crs.Version)
	},
	DisableAutoGenTag: true,
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Convert coordinates between reference systems.",
	Long: `transform reads lines of 'longitude latitude [height]' in the From
coordinate reference system and writes them converted to the To system.
Both systems must be geographic. Blank lines and lines starting with '#'
are copied unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := setGridSource(ctx, Cfg, nad.Default); err != nil {
			return err
		}
		t, err := NewTransformer(Cfg)
		if err != nil {
			return err
		}
		in, closeIn, err := openInput(Cfg.GetString("Input"))
		if err != nil {
			return err
		}
		defer closeIn()
		out, closeOut, err := openOutput(Cfg.GetString("Output"))
		if err != nil {
			return err
		}
		if err := t.Run(ctx, in, out); err != nil {
			closeOut()
			return err
		}
		return closeOut()
	},
	DisableAutoGenTag: true,
}

var gridCmd = &cobra.Command{
	Use:   "grid grid1 [grid2...]",
	Short: "Describe grid shift files.",
	Long: `grid prints the format, bounds, cell size and sub-grids of each of the
named grid shift files, which are found using GridSearchPaths or GridBucket.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := setGridSource(ctx, Cfg, nad.Default); err != nil {
			return err
		}
		return DescribeGrids(ctx, cmd.OutOrStdout(), nad.Default, args...)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert definition",
	Short: "Convert a coordinate reference system definition.",
	Long: `convert reads a coordinate reference system given as a Proj4 string
or as Esri well-known text and prints it in both notations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := crs.Parse(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("proj4: %s\nesri:  %s\n", p.ToProj4String(), p.ToEsriString())
		return nil
	},
	DisableAutoGenTag: true,
}
