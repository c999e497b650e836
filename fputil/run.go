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
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fluxprint"
)

// MeanFile is the name of the file that Run writes the average
// footprint of all records to.
const MeanFile = "mean" + fluxprint.GridExt

// readMet reads the turbulence records in metFile, which is in the
// given format ("table" or "eddypro").
func readMet(log logrus.FieldLogger, metFile, format string) ([]fluxprint.TurbulenceRecord, error) {
	if metFile == "" {
		return nil, fmt.Errorf("fluxprint: you need to specify a MetFile")
	}
	f, err := os.Open(metFile)
	if err != nil {
		return nil, fmt.Errorf("fluxprint: opening met file: %v", err)
	}
	defer f.Close()
	sum := new(fluxprint.Summary)
	var recs []fluxprint.TurbulenceRecord
	switch format {
	case "table":
		recs, err = fluxprint.ReadMetData(f, metFile, sum)
	case "eddypro":
		recs, err = fluxprint.ReadEddyPro(f, metFile, sum)
	default:
		return nil, fmt.Errorf("fluxprint: MetFormat is %q but should be \"table\" or \"eddypro\"", format)
	}
	if err != nil {
		return nil, err
	}
	sum.Log(log, "read")
	return recs, nil
}

// Run calculates the footprints of the records in metFile with batch
// and writes their mean to MeanFile in the batch output directory.
// filter, if not empty, is a record filter expression. Run only fails
// as a whole if no footprint could be calculated.
func Run(log logrus.FieldLogger, metFile, metFormat string, batch *fluxprint.Batch, filter string) error {
	startTime := time.Now()
	batch.Log = log

	if filter != "" {
		f, err := fluxprint.NewRecordFilter(filter)
		if err != nil {
			return err
		}
		batch.Filter = f
	}
	log.WithField("file", metFile).Info("reading turbulence statistics")
	recs, err := readMet(log, metFile, metFormat)
	if err != nil {
		return err
	}
	res, err := batch.Run(recs)
	if err != nil {
		return err
	}
	if res.Mean == nil {
		return fmt.Errorf("fluxprint: none of the %d records in %s produced a footprint", len(recs), metFile)
	}
	if batch.OutputDir != "" {
		path := filepath.Join(batch.OutputDir, MeanFile)
		if err := fluxprint.WriteRasterFile(path, res.Mean, false); err != nil {
			return err
		}
		log.WithField("file", path).Info("wrote mean footprint")
	}
	log.WithFields(logrus.Fields{
		"footprints": res.Summary.Accepted(),
		"elapsed":    time.Since(startTime).String(),
	}).Info("done")
	return nil
}

// Group groups the grid files in gridDir by hour of day, by day or by
// the custom lists in listDir, depending on groupBy, and averages each
// group. If ncFile is not empty, the averages are also written to it
// in netCDF format. Group only fails as a whole if no group could be
// averaged.
func Group(log logrus.FieldLogger, gridDir, groupBy, listDir, ncFile string, opts fluxprint.AverageOptions) error {
	opts.Log = log
	if opts.OutputDir != "" {
		same, err := sameDir(gridDir, opts.OutputDir)
		if err != nil {
			return err
		}
		if same {
			return fmt.Errorf("fluxprint: group averages would be written to the grid directory %s; "+
				"choose a different output directory", gridDir)
		}
	}
	paths, err := fluxprint.GridPaths(gridDir)
	if err != nil {
		return err
	}
	paths = withoutMean(paths)
	if len(paths) == 0 {
		return fmt.Errorf("fluxprint: no grid files found in %s", gridDir)
	}
	log.WithFields(logrus.Fields{
		"grids":    len(paths),
		"group_by": groupBy,
	}).Info("grouping footprints")

	sum := new(fluxprint.Summary)
	var groups fluxprint.Groups
	switch groupBy {
	case "hour":
		groups = fluxprint.GroupByHour(paths, sum)
	case "day":
		groups = fluxprint.GroupByDay(paths, sum)
	case "custom":
		if listDir == "" {
			return fmt.Errorf("fluxprint: custom grouping needs a GroupListDir")
		}
		groups, err = fluxprint.GroupByLists(listDir, paths, sum)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("fluxprint: GroupBy is %q but should be \"hour\", \"day\" or \"custom\"", groupBy)
	}
	sum.Log(log, "group")

	avgs, err := fluxprint.AverageGroups(groups, opts, new(fluxprint.Summary))
	if err != nil {
		return err
	}
	if len(avgs) == 0 {
		return fmt.Errorf("fluxprint: no group could be averaged")
	}
	for _, k := range avgs.Keys() {
		a := avgs[k]
		log.WithFields(logrus.Fields{
			"group":     k,
			"members":   a.Members,
			"peak_mean": a.PeakMean,
			"peak_min":  a.PeakMin,
			"peak_max":  a.PeakMax,
		}).Info("group average")
	}

	if ncFile != "" {
		f, err := os.Create(ncFile)
		if err != nil {
			return fmt.Errorf("fluxprint: creating netCDF file: %v", err)
		}
		if err := fluxprint.WriteNetCDF(f, avgs); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("file", ncFile).Info("wrote netCDF file")
	}
	return nil
}

// withoutMean removes a batch mean file from paths so it is not
// grouped with the footprints it was calculated from.
func withoutMean(paths []string) []string {
	var o []string
	for _, p := range paths {
		if filepath.Base(p) != MeanFile {
			o = append(o, p)
		}
	}
	return o
}

// sameDir reports whether a and b name the same directory.
func sameDir(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}
