// Package filewalker discovers configuration documents under a directory
// tree, filtering out files that are not XML.
package filewalker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".xml": true,
}

// FileEntry represents a discovered file ready for loading.
type FileEntry struct {
	Path string
	Ext  string
}

// Walk discovers all supported files under the given root directory.
func Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		if !looksLikeXML(root) {
			return nil, fmt.Errorf("not an XML document: %s", root)
		}
		return []FileEntry{{Path: root, Ext: filepath.Ext(root)}}, nil
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}
		if !looksLikeXML(path) {
			log.Warn().Str("path", path).Msg("Skipping file without XML prolog")
			return nil
		}

		entries = append(entries, FileEntry{Path: path, Ext: ext})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// looksLikeXML sniffs the first bytes for an XML prolog or doctype.
func looksLikeXML(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 256)
	n, _ := f.Read(buf)
	head := bytes.TrimLeft(buf[:n], " \t\r\n\xef\xbb\xbf")
	return bytes.HasPrefix(head, []byte("<?xml")) ||
		bytes.HasPrefix(head, []byte("<!DOCTYPE")) ||
		bytes.HasPrefix(head, []byte("<"))
}
