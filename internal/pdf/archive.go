package pdf

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
)

// writeZip stores files in a new archive at dst under their base names and
// returns the entry names in order
func writeZip(dst string, files []string) (entries []string, err error) {
	f, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	for _, name := range files {
		entry := filepath.Base(name)
		if err := addZipEntry(zw, entry, name); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}

func addZipEntry(zw *zip.Writer, entry, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
