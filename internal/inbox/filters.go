package inbox

import (
	"path/filepath"
	"strings"
)

var documentExts = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

func isHiddenDir(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isHiddenRelPath reports whether any element of relPath is hidden.
func isHiddenRelPath(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// isDocumentFile filters by extension only; the uploader sniffs content.
func isDocumentFile(name string) bool {
	return documentExts[strings.ToLower(filepath.Ext(name))]
}
