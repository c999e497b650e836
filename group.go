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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Groups maps a group key to the paths of the grid files in the group.
type Groups map[string][]string

// Keys returns the group keys in sorted order.
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeyFunc returns the group key for a grid file, given the file name
// without directory or extension.
type KeyFunc func(name string) (string, error)

// HourKey returns the hour-of-day code ("00".."23") of a grid named by
// GridFileName.
func HourKey(name string) (string, error) {
	if len(name) < 8 {
		return "", fmt.Errorf("name %q is too short to contain an hour code", name)
	}
	code := name[6:8]
	h, err := strconv.Atoi(code)
	if err != nil || !digits(code) || h > 23 {
		return "", fmt.Errorf("name %q has invalid hour code %q", name, code)
	}
	return code, nil
}

// DayKey returns the date code (yymmdd) of a grid named by
// GridFileName.
func DayKey(name string) (string, error) {
	if len(name) < 6 {
		return "", fmt.Errorf("name %q is too short to contain a date code", name)
	}
	code := name[:6]
	if !digits(code) {
		return "", fmt.Errorf("name %q has invalid date code %q", name, code)
	}
	return code, nil
}

func digits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// gridName strips the directory and extension from path.
func gridName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GroupBy assigns each path to the group returned by key. Paths whose
// key cannot be determined are reported to sum and left out.
func GroupBy(paths []string, key KeyFunc, sum *Summary) Groups {
	groups := make(Groups)
	for _, p := range paths {
		k, err := key(gridName(p))
		if err != nil {
			sum.Reject(&FormatError{File: p, Reason: err.Error()})
			continue
		}
		groups[k] = append(groups[k], p)
		sum.Accept()
	}
	return groups
}

// GroupByHour groups grid files by hour of day. All 24 hours are
// present in the result, possibly with no members.
func GroupByHour(paths []string, sum *Summary) Groups {
	groups := GroupBy(paths, HourKey, sum)
	for h := 0; h < 24; h++ {
		k := fmt.Sprintf("%02d", h)
		if _, ok := groups[k]; !ok {
			groups[k] = nil
		}
	}
	return groups
}

// GroupByDay groups grid files by date, one group per date found.
func GroupByDay(paths []string, sum *Summary) Groups {
	return GroupBy(paths, DayKey, sum)
}

// GroupByLists reads the group membership lists in listDir, one
// "<group>.txt" file per group with one token per line. A token names
// the grid in paths whose file name starts with it. Tokens that match
// no grid or more than one are reported to sum and left out of the
// group.
func GroupByLists(listDir string, paths []string, sum *Summary) (Groups, error) {
	lists, err := filepath.Glob(filepath.Join(listDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("fluxprint: listing group files: %v", err)
	}
	if len(lists) == 0 {
		return nil, fmt.Errorf("fluxprint: no group lists found in %s", listDir)
	}
	groups := make(Groups, len(lists))
	for _, list := range lists {
		key := strings.TrimSuffix(filepath.Base(list), ".txt")
		members, err := readGroupList(list, paths, sum)
		if err != nil {
			return nil, err
		}
		groups[key] = members
	}
	return groups, nil
}

func readGroupList(list string, paths []string, sum *Summary) ([]string, error) {
	f, err := os.Open(list)
	if err != nil {
		return nil, fmt.Errorf("fluxprint: opening group list: %v", err)
	}
	defer f.Close()
	var members []string
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		p, err := resolveMember(token, paths)
		if err != nil {
			sum.Reject(&FormatError{File: list, Line: line, Reason: err.Error()})
			continue
		}
		members = append(members, p)
		sum.Accept()
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fluxprint: reading group list %s: %v", list, err)
	}
	return members, nil
}

// resolveMember finds the one path whose file name starts with token.
func resolveMember(token string, paths []string) (string, error) {
	var match string
	n := 0
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), token) {
			match = p
			n++
		}
	}
	switch n {
	case 0:
		return "", fmt.Errorf("no grid matches %q", token)
	case 1:
		return match, nil
	default:
		return "", fmt.Errorf("%d grids match %q", n, token)
	}
}

// GridPaths returns the sorted paths of the grid files in dir.
func GridPaths(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+GridExt))
	if err != nil {
		return nil, fmt.Errorf("fluxprint: listing grid files: %v", err)
	}
	sort.Strings(paths)
	return paths, nil
}
