// Package apputil provides small file and directory helpers.
package apputil

import (
	"os"
	"path/filepath"

	"quill.dev/pkg/utils/chk"
)

// EnsureDir creates the directory that would contain fileName, and all of
// its parents, if they do not already exist.
func EnsureDir(fileName string) (err error) {
	dirName := filepath.Dir(fileName)
	if _, err = os.Stat(dirName); err != nil {
		if err = os.MkdirAll(dirName, os.ModePerm); chk.E(err) {
			return
		}
	}
	return nil
}

// FileExists reports whether the named file or directory exists.
func FileExists(filePath string) bool {
	_, e := os.Stat(filePath)
	return e == nil
}
