package args

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// FileSystem is the file access the expander needs. Production code reads the
// real file system; tests use MemFileSystem.
type FileSystem interface {
	Exists(path string) bool
	ReadLines(path string) ([]string, error)
}

// OSFileSystem reads files from disk.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// MemFileSystem is an in-memory FileSystem keyed by path.
type MemFileSystem struct {
	files map[string][]string
}

var _ FileSystem = &MemFileSystem{}

func NewMemFileSystem() *MemFileSystem {
	return &MemFileSystem{files: make(map[string][]string)}
}

// SetupFile stores a file with the given lines.
func (m *MemFileSystem) SetupFile(path string, lines ...string) *MemFileSystem {
	m.files[path] = append([]string(nil), lines...)
	return m
}

// SetupFiles stores several files described as "name:content,name:content".
// Content lines are separated by \n.
func (m *MemFileSystem) SetupFiles(spec string) *MemFileSystem {
	for _, entry := range strings.Split(spec, ",") {
		name, content, ok := strings.Cut(entry, ":")
		if !ok || name == "" {
			continue
		}
		if content == "" {
			m.SetupFile(name)
			continue
		}
		m.SetupFile(name, strings.Split(content, "\n")...)
	}
	return m
}

func (m *MemFileSystem) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *MemFileSystem) ReadLines(path string) ([]string, error) {
	lines, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]string(nil), lines...), nil
}

// IsNotFound reports whether err means the file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
