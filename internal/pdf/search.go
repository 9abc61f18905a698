package pdf

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
	"github.com/a3tai/pdf-tools/internal/pdf/security"
)

// ListFiles lists the PDFs below a workspace directory whose names match
// the query. Hidden directories, including the job scratch area, are skipped.
func (s *Service) ListFiles(ctx context.Context, req ListFilesRequest) (*ListFilesResult, error) {
	return run(ctx, s, ToolListFiles, func() (*ListFilesResult, error) {
		directory := req.Directory
		if directory == "" {
			directory = s.pathValidator.Root()
		}

		absDirectory, err := s.pathValidator.ValidateDirectory(directory)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, pdferrors.NotFound(ToolListFiles, directory)
		case errors.Is(err, security.ErrNotDirectory):
			return nil, pdferrors.Validation(ToolListFiles, "path is not a directory: %s", directory)
		case err != nil:
			return nil, pdferrors.Security(ToolListFiles, err)
		}

		query := strings.ToLower(strings.TrimSpace(req.Query))
		files := []FileInfo{}

		err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if we encounter an error with a specific file
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
					return filepath.SkipDir
				}
				return nil
			}

			if !isPDFFile(d.Name()) || !matchesQuery(d.Name(), query) {
				return nil
			}

			fi, err := d.Info()
			if err != nil || fi.Size() == 0 {
				return nil
			}

			files = append(files, FileInfo{
				Path:         path,
				Name:         fi.Name(),
				Size:         fi.Size(),
				ModifiedTime: fi.ModTime().Format("2006-01-02 15:04:05"),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}

		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

		return &ListFilesResult{
			Directory:  absDirectory,
			Query:      req.Query,
			Files:      files,
			TotalCount: len(files),
		}, nil
	})
}

// matchesQuery performs fuzzy matching on the filename. query must be lower case.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	fileName := strings.ToLower(filename)
	if strings.Contains(fileName, query) {
		return true
	}

	// Word-based matching: every query word must appear in some filename word
	words := splitIntoWords(strings.TrimSuffix(fileName, ".pdf"))
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// splitIntoWords splits a string into words using common separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
