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
	"sync"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
)

// AverageOptions configures AverageGroups.
type AverageOptions struct {
	// OutputDir, if not empty, is where each group average is written
	// as "<key>.grd".
	OutputDir string

	// LegacyHeader writes the fixed 150×150 header of older tools
	// instead of one describing each grid. Only use it when every
	// grid really has those dimensions.
	LegacyHeader bool

	// Workers is the number of groups averaged in parallel. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int

	// CacheSize is the number of parsed rasters kept in memory for
	// reuse by groups that share members. Zero disables the cache.
	CacheSize int

	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
}

// GroupAverage is the average footprint of one group.
type GroupAverage struct {
	Key string

	// Path is the output file, if one was written.
	Path string

	Grid    *Grid
	Members int

	// Statistics of the peak weights of the member grids.
	PeakMean, PeakMin, PeakMax float64
}

// Averages holds group averages by key.
type Averages map[string]*GroupAverage

// Keys returns the group keys in sorted order.
func (a Averages) Keys() []string {
	g := make(Groups, len(a))
	for k := range a {
		g[k] = nil
	}
	return g.Keys()
}

// Paths returns the output file of each group that was written.
func (a Averages) Paths() map[string]string {
	o := make(map[string]string, len(a))
	for k, v := range a {
		if v.Path != "" {
			o[k] = v.Path
		}
	}
	return o
}

// rasterCache is a concurrency-safe LRU cache of parsed raster files.
// A nil *rasterCache reads every file.
type rasterCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newRasterCache(size int) *rasterCache {
	if size <= 0 {
		return nil
	}
	return &rasterCache{cache: lru.New(size)}
}

// read returns the grid at path. Cached grids are shared and must not
// be modified.
func (c *rasterCache) read(path string) (*Grid, error) {
	if c == nil {
		return ReadRasterFile(path)
	}
	c.mu.Lock()
	v, ok := c.cache.Get(path)
	c.mu.Unlock()
	if ok {
		return v.(*Grid), nil
	}
	g, err := ReadRasterFile(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache.Add(path, g)
	c.mu.Unlock()
	return g, nil
}

// AverageGroup returns the cell-by-cell mean of the grid files in
// members. All members must have the same shape as the first one; a
// *ShapeMismatchError names the first member that does not.
func AverageGroup(key string, members []string) (*GroupAverage, error) {
	return averageGroup(key, members, nil)
}

func averageGroup(key string, members []string, cache *rasterCache) (*GroupAverage, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("fluxprint: group %s has no members", key)
	}
	var acc Accumulator
	var peaks stats.Stats
	for _, m := range members {
		g, err := cache.read(m)
		if err != nil {
			return nil, err
		}
		if err := acc.Add(g); err != nil {
			if e, ok := err.(*ShapeMismatchError); ok {
				e.Member = m
			}
			return nil, err
		}
		peaks.Update(g.Data.Max())
	}
	mean, err := acc.Mean()
	if err != nil {
		return nil, err
	}
	return &GroupAverage{
		Key:      key,
		Grid:     mean,
		Members:  peaks.Count(),
		PeakMean: peaks.Mean(),
		PeakMin:  peaks.Min(),
		PeakMax:  peaks.Max(),
	}, nil
}

// AverageGroups averages every non-empty group. Groups are averaged in
// parallel and independently: a group that fails, for example because
// its members have different shapes, is reported to sum and left out
// of the result while the other groups proceed. Empty groups are
// counted as skipped.
func AverageGroups(groups Groups, opts AverageOptions, sum *Summary) (Averages, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("fluxprint: creating output directory: %v", err)
		}
	}
	nprocs := opts.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	cache := newRasterCache(opts.CacheSize)

	keys := groups.Keys()
	keyChan := make(chan string)
	var (
		mu  sync.Mutex
		out = make(Averages, len(keys))
		wg  sync.WaitGroup
	)
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func() {
			defer wg.Done()
			for key := range keyChan {
				glog := log.WithField("group", key)
				avg, err := averageGroup(key, groups[key], cache)
				if err == nil && opts.OutputDir != "" {
					avg.Path = filepath.Join(opts.OutputDir, key+GridExt)
					if opts.LegacyHeader && !avg.Grid.Shape().Equal(legacyShape) {
						glog.Warnf("writing legacy header for grid of shape %v", avg.Grid.Shape())
					}
					err = WriteRasterFile(avg.Path, avg.Grid, opts.LegacyHeader)
				}
				if err != nil {
					glog.Warn(err)
					sum.Reject(&GroupError{Group: key, Err: err})
					continue
				}
				glog.WithFields(logrus.Fields{
					"members":   avg.Members,
					"peak_mean": avg.PeakMean,
				}).Debug("averaged group")
				mu.Lock()
				out[key] = avg
				mu.Unlock()
				sum.Accept()
			}
		}()
	}
	for _, key := range keys {
		if len(groups[key]) == 0 {
			sum.Skip()
			continue
		}
		keyChan <- key
	}
	close(keyChan)
	wg.Wait()
	sum.Log(log, "average")
	return out, nil
}
