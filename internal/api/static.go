package api

import (
	"net/http"
	"os"
	"path"
)

// staticDir serves files from dir but never lists directories; a directory
// is served only through its index.html.
type staticDir string

func (d staticDir) Open(name string) (http.File, error) {
	fs := http.Dir(d)
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}
