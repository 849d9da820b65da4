package artifact

import "github.com/vietddude/trendlake/internal/core/domain"

// TimestampFormat is the pattern every timestamp column is parsed with.
const TimestampFormat = "yyyy-MM-dd HH:mm:ss.nnnnnnnnn"

const (
	regionsSchema = "struct<" +
		"id:string," +
		"snippet:struct<name:string>," +
		"metadata:struct<retrieved_at:timestamp>>"

	categoriesSchema = "struct<" +
		"id:string," +
		"snippet:struct<title:string,assignable:boolean,channelId:string>," +
		"metadata:struct<region_code:string,retrieved_at:timestamp>>"

	rankedItemsSchema = "struct<" +
		"kind:string," +
		"etag:string," +
		"id:string," +
		"snippet:struct<" +
		"publishedAt:timestamp," +
		"channelId:string," +
		"title:string," +
		"description:string," +
		"channelTitle:string," +
		"tags:array<string>," +
		"categoryId:string," +
		"liveBroadcastContent:string," +
		"defaultLanguage:string," +
		"defaultAudioLanguage:string>," +
		"statistics:struct<" +
		"viewCount:bigint," +
		"likeCount:bigint," +
		"favoriteCount:bigint," +
		"commentCount:bigint>," +
		"metadata:struct<" +
		"region_code:string," +
		"category_id:string," +
		"retrieved_at:timestamp," +
		"rank:int>>"
)

// Schema returns the columnar struct definition for kind. The backup is
// compressed rather than converted and has none.
func Schema(kind domain.ArtifactKind) string {
	switch kind {
	case domain.ArtifactRegions:
		return regionsSchema
	case domain.ArtifactCategories:
		return categoriesSchema
	case domain.ArtifactRankedItems:
		return rankedItemsSchema
	default:
		return ""
	}
}
