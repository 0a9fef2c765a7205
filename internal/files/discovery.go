// Package files discovers raw cycler and impedance data files on disk.
//
// Cycler exports follow the convention <test>_Channel_<ch>.<seq>.csv where
// seq orders the files of one channel chronologically; impedance sweeps are
// single DTA files. Discovery only locates and orders files — parsing is
// the cellbuilder package's job.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileInfo describes a discovered data file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery rooted at a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles finds the CSV files in dir, ordered chronologically: by the
// sequence number embedded in the file name when present, by modification
// time otherwise.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	files, err := d.findByExtension(dir, ".csv")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		si, iok := SequenceNumber(files[i].Name)
		sj, jok := SequenceNumber(files[j].Name)
		if iok && jok {
			return si < sj
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindDTAFiles finds the Gamry DTA files in dir, ordered by name.
func (d *Discovery) FindDTAFiles(dir string) ([]FileInfo, error) {
	files, err := d.findByExtension(dir, ".dta")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ChannelDirs lists the Channel_<n> subdirectories of dir keyed by channel
// number.
func (d *Discovery) ChannelDirs(dir string) (map[int]string, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	dirs := make(map[int]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "Channel_") {
			continue
		}
		ch, err := strconv.Atoi(strings.TrimPrefix(name, "Channel_"))
		if err != nil {
			continue
		}
		dirs[ch] = filepath.Join(fullPath, name)
	}
	return dirs, nil
}

// SequenceNumber extracts the chronological sequence number from a file
// name of the form <base>.<seq>.<ext>.
func SequenceNumber(name string) (int, bool) {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, false
	}
	return seq, true
}

func (d *Discovery) findByExtension(dir, ext string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
