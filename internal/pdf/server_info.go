package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/pdf-tools/internal/descriptions"
)

// ServerInfoResult describes the server, its limits and its workspace
type ServerInfoResult struct {
	ServerName        string              `json:"server_name"`
	Version           string              `json:"version"`
	Directory         string              `json:"directory"`
	MaxFileSize       int64               `json:"max_file_size"`
	MaxFiles          int                 `json:"max_files"`
	DefaultDPI        int                 `json:"default_dpi"`
	JPEGQuality       int                 `json:"jpeg_quality"`
	Tools             []descriptions.Tool `json:"tools"`
	SupportedImages   []string            `json:"supported_images"`
	DirectoryContents []FileInfo          `json:"directory_contents"`
	Truncated         bool                `json:"truncated,omitempty"`
}

// SupportedImageFormats lists the image formats JPGToPDF accepts
func SupportedImageFormats() []string {
	return []string{"jpeg", "png", "tiff", "webp", "bmp", "gif"}
}

// directoryCache provides TTL-based caching for workspace scans
type directoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	files      []FileInfo
	truncated  bool
	lastUpdate time.Time
}

func (c *directoryCache) get() ([]FileInfo, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastUpdate.IsZero() || time.Since(c.lastUpdate) > c.ttl {
		return nil, false, false
	}
	return c.files, c.truncated, true
}

func (c *directoryCache) set(files []FileInfo, truncated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = files
	c.truncated = truncated
	c.lastUpdate = time.Now()
}

// lazyScanner walks a directory with depth, file count and time limits
type lazyScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

func (s *lazyScanner) scan(ctx context.Context, root string) ([]FileInfo, bool, error) {
	start := time.Now()
	files := []FileInfo{}
	truncated := false

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth >= s.maxDepth {
			return nil
		}
		if len(files) >= s.fileLimit || time.Since(start) > s.timeLimit {
			truncated = true
			return nil
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // Skip directories we can't read
		}
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") || entry.Type()&os.ModeSymlink != 0 {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := walk(path, depth+1); err != nil {
					return err
				}
				continue
			}
			if !isPDFFile(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, FileInfo{
				Path:         path,
				Name:         entry.Name(),
				Size:         info.Size(),
				ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
			})
			if len(files) >= s.fileLimit {
				truncated = true
				return nil
			}
		}
		return nil
	}

	err := walk(root, 0)
	return files, truncated, err
}

// ServerInfo reports server identity, limits, the tool catalog and a bounded
// listing of the workspace. Listings are cached for a few minutes.
type ServerInfo struct {
	service *Service
	cache   *directoryCache
	scanner *lazyScanner
}

// NewServerInfo creates a ServerInfo for service
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		service: service,
		cache:   &directoryCache{ttl: 5 * time.Minute},
		scanner: &lazyScanner{maxDepth: 5, fileLimit: 100, timeLimit: 3 * time.Second},
	}
}

// Get builds the server info. A failed or cancelled scan yields an empty listing.
func (p *ServerInfo) Get(ctx context.Context, serverName, version string) *ServerInfoResult {
	files, truncated, ok := p.cache.get()
	if !ok {
		var err error
		files, truncated, err = p.scanner.scan(ctx, p.service.Directory())
		if err != nil {
			files, truncated = []FileInfo{}, false
		} else {
			p.cache.set(files, truncated)
		}
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		Directory:         p.service.Directory(),
		MaxFileSize:       p.service.maxFileSize,
		MaxFiles:          p.service.maxFiles,
		DefaultDPI:        p.service.dpi,
		JPEGQuality:       p.service.quality,
		Tools:             descriptions.Catalog,
		SupportedImages:   SupportedImageFormats(),
		DirectoryContents: files,
		Truncated:         truncated,
	}
}
