package imagecache

import "errors"

// Sentinel error categories (§7: ImageError).
var (
	ErrImage                = errors.New("image error")
	ErrUnknownPackageManager = errors.New("unknown package manager")
)
