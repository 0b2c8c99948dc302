package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
)

// SysHealth represents process and cookbook directory statistics.
type SysHealth struct {
	Alloc       string
	Sys         string
	NumGC       uint32
	Goroutines  int
	RecipeFiles int
	DataSize    string
}

// DirStats summarizes the recipe files in a directory.
type DirStats struct {
	Files int
	Bytes uint64
}

// Human renders the total size, e.g. "12 kB".
func (d DirStats) Human() string {
	return humanize.Bytes(d.Bytes)
}

// StatDir counts the regular files directly in dir whose name ends in ext
// and sums their sizes. Subdirectories are not descended into.
func StatDir(dir, ext string) (DirStats, error) {
	var stats DirStats
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ext) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += uint64(info.Size())
		return nil
	})
	if err != nil {
		return DirStats{}, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	return stats, nil
}

// GetSysHealth collects memory statistics and the size of the cookbook
// directory.
func GetSysHealth(dir, ext string) (SysHealth, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats, err := StatDir(dir, ext)
	if err != nil {
		return SysHealth{}, err
	}

	return SysHealth{
		Alloc:       humanize.Bytes(m.Alloc),
		Sys:         humanize.Bytes(m.Sys),
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		RecipeFiles: stats.Files,
		DataSize:    stats.Human(),
	}, nil
}
