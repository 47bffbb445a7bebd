package constants

import "strings"

// PDF is the only document format the extraction strategies understand.
const PDF = "PDF"

// AllowedExtensions holds the file extensions picked up by batch enumeration.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupportedExt reports whether ext (with or without the dot) is a bill document.
func IsSupportedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// ExcludedDirs are the category folders skipped by default when comparing a
// directory of bills. They hold already-sorted bills, not comparison inputs.
var ExcludedDirs = []string{
	"Factura Gaz",
	"Factura Curent",
}
