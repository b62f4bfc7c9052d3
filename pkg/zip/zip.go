// Package zip packs a finished generation and its inputs into one archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type Asset struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// Write streams assets into w. Duplicate names get a numeric suffix.
func Write(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(path.Base(strings.ReplaceAll(asset.Filename, "\\", "/")), used)
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: asset.Modified}
		if hdr.Modified.IsZero() {
			hdr.Modified = time.Now()
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := fw.Write(asset.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// ArchiveAssets returns the archive as bytes.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, assets); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uniqueName(name string, used map[string]int) string {
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}
