package processor

import (
	"fmt"
	"go/build"
	"io"
	"os"
	"path"
	"path/filepath"
)

// DefaultOutputFactory returns the default OutputFactory used by Process and
// ProcessAll. If the given rootDir is blank, each file is written into the
// source directory of its package, as located by go/build. Otherwise, the
// full path will be <rootDir>/<path>, so files are organized by package path
// under the root directory.
//
// After computing the destination path, os.OpenFile is used to open the file
// for writing (creating the file if necessary, truncating it if it already
// exists).
func DefaultOutputFactory(rootDir string) OutputFactory {
	return func(p string) (io.WriteCloser, error) {
		dest, err := determineOutputDir(rootDir, path.Dir(p))
		if err != nil {
			return nil, err
		}
		dest = filepath.Join(dest, path.Base(p))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

func determineOutputDir(root, pkgPath string) (string, error) {
	if root != "" {
		out := filepath.Join(root, filepath.FromSlash(pkgPath))
		if err := os.MkdirAll(out, os.ModePerm); err != nil {
			return "", fmt.Errorf("could not create output directory %s: %s", out, err.Error())
		}
		return out, nil
	}
	pkg, err := build.Import(pkgPath, ".", build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("could not determine output directory for package %q: %v", pkgPath, err)
	}
	if pkg.Goroot {
		return "", fmt.Errorf("cannot generate output for package %q because it is in GOROOT", pkgPath)
	}
	return pkg.Dir, nil
}
