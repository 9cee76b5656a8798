package assetpack

// Limits bounds the resources a build may consume. Zero fields take the
// defaults.
type Limits struct {
	MaxAssetSize       int64  // bytes read for a single asset
	MaxExpandedLinks   int    // links one wildcard may expand into
	MaxSnapshotSize    uint64 // snapshot payload after decompression
	MaxSnapshotEntries int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxAssetSize:       64 << 20,  // 64 MiB
		MaxExpandedLinks:   10_000,
		MaxSnapshotSize:    512 << 20, // 512 MiB
		MaxSnapshotEntries: 100_000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxAssetSize == 0 {
		l.MaxAssetSize = d.MaxAssetSize
	}
	if l.MaxExpandedLinks == 0 {
		l.MaxExpandedLinks = d.MaxExpandedLinks
	}
	if l.MaxSnapshotSize == 0 {
		l.MaxSnapshotSize = d.MaxSnapshotSize
	}
	if l.MaxSnapshotEntries == 0 {
		l.MaxSnapshotEntries = d.MaxSnapshotEntries
	}
	return l
}
