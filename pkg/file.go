package finddup

import (
	"os"
	"path/filepath"
	"strings"
)

// FileLocation is a directory plus a file name found in it
type FileLocation struct {
	Dir  string
	Name string
}

// Path joins the directory and the name without cleaning, so the directory keeps the
// spelling it was given ("./music" stays "./music")
func (fl FileLocation) Path() string {
	return joinPath(fl.Dir, fl.Name)
}

// NewFileLocation splits a path into a FileLocation
func NewFileLocation(path string) FileLocation {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	} else if len(dir) > 1 {
		dir = strings.TrimSuffix(dir, string(os.PathSeparator))
	}
	return FileLocation{Dir: dir, Name: name}
}

// joinPath appends name to dir with a single separator
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}
