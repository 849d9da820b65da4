package domain

// ArtifactKind names a dataset the pipeline publishes.
type ArtifactKind string

const (
	ArtifactBackup      ArtifactKind = "backup"
	ArtifactRegions     ArtifactKind = "regions"
	ArtifactCategories  ArtifactKind = "categories"
	ArtifactRankedItems ArtifactKind = "most_popular"
)

// ArtifactKinds is the build order. Escalation uses EscalationOrder instead.
var ArtifactKinds = []ArtifactKind{
	ArtifactRegions,
	ArtifactCategories,
	ArtifactRankedItems,
	ArtifactBackup,
}

// EscalationOrder ranks defects: the first defective kind in this list is
// the one a failed run reports.
var EscalationOrder = []ArtifactKind{
	ArtifactRankedItems,
	ArtifactCategories,
	ArtifactRegions,
	ArtifactBackup,
}

// RawFile is the sink file name the harvest writes for this kind.
func (k ArtifactKind) RawFile() string {
	return string(k) + ".json"
}

// Ext is the extension of the published form.
func (k ArtifactKind) Ext() string {
	if k == ArtifactBackup {
		return "json.zst"
	}
	return "orc"
}

// PublishedFile is the local file name of the published form.
func (k ArtifactKind) PublishedFile() string {
	return string(k) + "." + k.Ext()
}
