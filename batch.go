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

package fluxprint

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GridExt is the file extension of footprint raster files.
const GridExt = ".grd"

// GridFileName returns the name of the raster file for a record at t.
// Grouping by hour and by day relies on this naming.
func GridFileName(t time.Time) string { return t.Format(TimeLayout) + GridExt }

// Batch calculates footprints for a table of turbulence records.
type Batch struct {
	Site *SiteConfig

	// Workers is the number of records processed in parallel. Zero
	// means runtime.GOMAXPROCS(0).
	Workers int

	// Records before Begin or at or after End are skipped. Zero times
	// leave the window open on that side.
	Begin, End time.Time

	// Filter, if not nil, skips records it does not match.
	Filter *RecordFilter

	// OutputDir, if not empty, is where each record's grid is written,
	// named by GridFileName.
	OutputDir string

	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
}

// BatchResult holds the output of Batch.Run.
type BatchResult struct {
	// Mean is the average grid of all accepted records, or nil if
	// none were accepted.
	Mean *Grid

	// Files lists the grid files written, sorted.
	Files []string

	Summary *Summary
}

// Run calculates the footprint of every selected record. Records that
// fail validation or produce a degenerate model are reported in the
// result's Summary and do not stop the batch. The returned error is
// only non-nil when the batch could not run at all.
func (b *Batch) Run(records []TurbulenceRecord) (*BatchResult, error) {
	if b.Site == nil {
		return nil, fmt.Errorf("fluxprint: batch has no site configuration")
	}
	if err := b.Site.Validate(); err != nil {
		return nil, err
	}
	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if b.OutputDir != "" {
		if err := os.MkdirAll(b.OutputDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("fluxprint: creating output directory: %v", err)
		}
	}
	sum := new(Summary)
	selected := b.selectRecords(records, sum)

	nprocs := b.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	if nprocs > len(selected) {
		nprocs = len(selected)
	}
	log.WithFields(logrus.Fields{
		"records":  len(records),
		"selected": len(selected),
		"workers":  nprocs,
	}).Info("calculating footprints")

	accs := make([]Accumulator, nprocs)
	files := make([][]string, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func(p int) {
			defer wg.Done()
			start := p * len(selected) / nprocs
			end := (p + 1) * len(selected) / nprocs
			for i := start; i < end; i++ {
				r := &selected[i]
				path, err := b.footprint(r, &accs[p])
				if err != nil {
					log.WithField("time", r.Time.Format(TimeLayout)).Debug(err)
					sum.Reject(err)
					continue
				}
				if path != "" {
					files[p] = append(files[p], path)
				}
				sum.Accept()
			}
		}(p)
	}
	wg.Wait()

	res := &BatchResult{Summary: sum}
	var total Accumulator
	for p := range accs {
		if err := total.Merge(&accs[p]); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, files[p]...)
	}
	sort.Strings(res.Files)
	if total.Count() > 0 {
		mean, err := total.Mean()
		if err != nil {
			return nil, err
		}
		res.Mean = mean
	}
	sum.Log(log, "footprint")
	return res, nil
}

// selectRecords applies the time window and filter. Records are keyed
// by their grid file name, so only the first record for each timestamp
// is kept and later ones are rejected.
func (b *Batch) selectRecords(records []TurbulenceRecord, sum *Summary) []TurbulenceRecord {
	var selected []TurbulenceRecord
	seen := make(map[string]bool)
	for i := range records {
		r := &records[i]
		if !b.Begin.IsZero() && r.Time.Before(b.Begin) {
			sum.Skip()
			continue
		}
		if !b.End.IsZero() && !r.Time.Before(b.End) {
			sum.Skip()
			continue
		}
		ok, err := b.Filter.Match(r)
		if err != nil {
			sum.Reject(&ValidationError{Time: r.Time, Reason: err.Error()})
			continue
		}
		if !ok {
			sum.Skip()
			continue
		}
		key := GridFileName(r.Time)
		if seen[key] {
			sum.Reject(&ValidationError{Time: r.Time, Reason: "duplicate timestamp"})
			continue
		}
		seen[key] = true
		selected = append(selected, *r)
	}
	return selected
}

// footprint calculates one grid, adds it to acc and writes it to the
// output directory.
func (b *Batch) footprint(r *TurbulenceRecord, acc *Accumulator) (string, error) {
	g, err := Footprint(r, b.Site)
	if err != nil {
		return "", err
	}
	var path string
	if b.OutputDir != "" {
		path = filepath.Join(b.OutputDir, GridFileName(r.Time))
		if err := WriteRasterFile(path, g, false); err != nil {
			return "", err
		}
	}
	if err := acc.Add(g); err != nil {
		return "", err
	}
	return path, nil
}
