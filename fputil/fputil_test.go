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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fluxprint"
)

const testMetTable = "Datetime\twd(deg)\tU(m/s)\tSgm_v\tu*(m/s)\tL(m)\tH(J/m2)\trho(kg/m3)\tkey(1/0==use ustar & Obu_L /use H_sensible heat)\n" +
	"1805011000\t10\t2.1\t0.55\t0.31\t-45\t120\t1.19\t1\n" +
	"1805011100\t200\t2.4\t0.6\t0.28\t-9999\t110\t1.18\t0\n" +
	"1805011130\t210\t2.4\t0.6\t0\t-30\t110\t1.18\t1\n" +
	"1805021000\t30\t1.8\t0.5\t0.25\t-60\t90\t1.19\t1\n"

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func TestVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "fluxprint v" + fluxprint.Version; !strings.Contains(buf.String(), want) {
		t.Errorf("output %q does not contain %q", buf.String(), want)
	}
}

func TestRunGroup(t *testing.T) {
	dir := t.TempDir()
	metFile := filepath.Join(dir, "met.txt")
	if err := ioutil.WriteFile(metFile, []byte(testMetTable), 0644); err != nil {
		t.Fatal(err)
	}
	grids := filepath.Join(dir, "grids")
	logFile := filepath.Join(dir, "fluxprint.log")
	Root.SetOutput(ioutil.Discard)
	defer Root.SetOutput(nil)

	Cfg.Set("MetFile", metFile)
	Cfg.Set("OutputDir", grids)
	Cfg.Set("LogFile", logFile)
	Cfg.Set("Site.XMax", 50.0)
	Cfg.Set("Site.YMax", 50.0)
	Cfg.Set("Site.Dx", 1.0)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"1805011000.grd", "1805011100.grd", "1805021000.grd", MeanFile} {
		if _, err := os.Stat(filepath.Join(grids, name)); err != nil {
			t.Error(err)
		}
	}
	if _, err := os.Stat(filepath.Join(grids, "1805011130.grd")); err == nil {
		t.Error("footprint written for a record with zero u*")
	}
	b, err := ioutil.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "1805011130") {
		t.Error("rejected record is not in the log")
	}

	hours := filepath.Join(dir, "hours")
	ncFile := filepath.Join(dir, "hours.nc")
	Cfg.Set("GridDir", grids)
	Cfg.Set("GroupOutputDir", hours)
	Cfg.Set("GroupBy", "hour")
	Cfg.Set("NetCDFFile", ncFile)
	Root.SetArgs([]string{"group"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	g10, err := fluxprint.ReadRasterFile(filepath.Join(hours, "10.grd"))
	if err != nil {
		t.Fatal(err)
	}
	if g10.Nx() != 100 || g10.Ny() != 100 {
		t.Errorf("hour 10 grid is %dx%d; want 100x100", g10.Nx(), g10.Ny())
	}
	if _, err := os.Stat(filepath.Join(hours, "12.grd")); err == nil {
		t.Error("empty hour group was written")
	}
	f, err := os.Open(ncFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	nc, err := fluxprint.ReadNetCDF(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(nc) != 2 {
		t.Errorf("netCDF file has %d groups; want 2", len(nc))
	}
}

func TestGroupDefaultDirs(t *testing.T) {
	for cmd, name := range map[string]string{"run": "OutputDir", "group": "GroupOutputDir"} {
		c, _, err := Root.Find([]string{cmd})
		if err != nil {
			t.Fatal(err)
		}
		f := c.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("%s has no %s flag", cmd, name)
		}
		Cfg.Set(name, f.DefValue)
	}
	gridDir := Cfg.GetString("OutputDir")
	groupDir := Cfg.GetString("GroupOutputDir")
	if same, _ := sameDir(gridDir, groupDir); same {
		t.Fatalf("run and group both write to %s by default", gridDir)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := ioutil.WriteFile("met.txt", []byte(testMetTable), 0644); err != nil {
		t.Fatal(err)
	}
	Root.SetOutput(ioutil.Discard)
	defer Root.SetOutput(nil)
	Cfg.Set("MetFile", "met.txt")
	Cfg.Set("LogFile", "")
	Cfg.Set("Site.XMax", 50.0)
	Cfg.Set("Site.YMax", 50.0)
	Cfg.Set("Site.Dx", 1.0)
	Cfg.Set("GridDir", gridDir)
	Cfg.Set("GroupBy", "day")
	Cfg.Set("NetCDFFile", "")

	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	before, err := fluxprint.GridPaths(gridDir)
	if err != nil {
		t.Fatal(err)
	}
	// Grouping twice leaves the grid directory as the run left it.
	for i := 0; i < 2; i++ {
		Root.SetArgs([]string{"group"})
		if err := Root.Execute(); err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
	}
	after, err := fluxprint.GridPaths(gridDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Errorf("grid directory holds %d grids after grouping; want %d", len(after), len(before))
	}
	for _, day := range []string{"180501.grd", "180502.grd"} {
		if _, err := os.Stat(filepath.Join(groupDir, day)); err != nil {
			t.Error(err)
		}
	}
}

func TestGroupSameDir(t *testing.T) {
	dir := t.TempDir()
	g := fluxprint.NewGrid(fluxprint.Shape{Nx: 2, Ny: 2, XMax: 2, YMax: 2})
	if err := fluxprint.WriteRasterFile(filepath.Join(dir, "1805011000.grd"), g, false); err != nil {
		t.Fatal(err)
	}
	for _, out := range []string{dir, dir + string(filepath.Separator), filepath.Join(dir, "x", "..")} {
		err := Group(quietLogger(), dir, "hour", "", "", fluxprint.AverageOptions{OutputDir: out})
		if err == nil {
			t.Errorf("grouping into %s succeeded; want an error", out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "10.grd")); err == nil {
		t.Error("average written into the grid directory")
	}
}

func TestSiteConfig(t *testing.T) {
	cfg := Cfg
	t.Run("options", func(t *testing.T) {
		cfg.Set("SiteFile", "")
		cfg.Set("Site.XMax", 50.0)
		cfg.Set("Site.YMax", 20.0)
		cfg.Set("Site.Dx", 1.0)
		c, err := SiteConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if c.SensorX != 50 || c.SensorY != 20 {
			t.Errorf("sensor = (%g, %g); want (50, 20)", c.SensorX, c.SensorY)
		}
		if c.MeasurementHeight != 2 || c.ReferenceTemperature != fluxprint.DefaultReferenceTemperature {
			t.Errorf("site = %+v", c)
		}
	})
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "site.toml")
		const site = "MeasurementHeight = 3.0\nRoughnessHeight = 0.2\nXMax = 10.0\nYMax = 10.0\nDx = 0.5\nSensorX = 4.0\n"
		if err := ioutil.WriteFile(path, []byte(site), 0644); err != nil {
			t.Fatal(err)
		}
		cfg.Set("SiteFile", path)
		defer cfg.Set("SiteFile", "")
		c, err := SiteConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if c.MeasurementHeight != 3 || c.SensorX != 4 || c.SensorY != 10 || c.Nx() != 40 {
			t.Errorf("site = %+v", c)
		}
	})
	t.Run("invalid", func(t *testing.T) {
		cfg.Set("Site.Dx", 3.0)
		defer cfg.Set("Site.Dx", 1.0)
		if _, err := SiteConfig(cfg); err == nil {
			t.Error("invalid site passed")
		}
	})
}

func TestParseTime(t *testing.T) {
	tt, err := parseTime("1805011030")
	if err != nil {
		t.Fatal(err)
	}
	if tt.Year() != 2018 || tt.Hour() != 10 || tt.Minute() != 30 {
		t.Errorf("time = %v", tt)
	}
	if tt, err := parseTime(""); err != nil || !tt.IsZero() {
		t.Errorf("empty time = %v, %v", tt, err)
	}
	if _, err := parseTime("2018-05-01"); err == nil {
		t.Error("wrong layout should fail")
	}
}
