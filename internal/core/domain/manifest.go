package domain

// ManifestEntry is one generated file listed in a generator manifest.
type ManifestEntry struct {
	File string
	Hash string
}
