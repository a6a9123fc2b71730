package models

import (
	"fmt"
	"strings"
)

// SchemaVariant selects the output column schema and whether the score is computed.
type SchemaVariant string

const (
	SchemaScoring SchemaVariant = "scoring" // listing columns + profitability score
	SchemaPlain   SchemaVariant = "plain"   // wider listing columns, no score
)

// scoringColumns excludes the score column; Config.ColumnSchema appends it.
var scoringColumns = []string{
	"type",
	"year",
	"make",
	"model",
	"rating",
	"isAllStarHost",
	"avgDailyPrice.amount",
	"avgDailyPrice.currency",
	"completedTrips",
	"location.locationSlugs.en_CA",
	"location.isDelivery",
	"location.city",
	"isNewListing",
	"tags[0].label",
	"tags[0].type",
	"tags[1].label",
	"tags[1].type",
	"tags[2].label",
	"tags[2].type",
}

var plainColumns = []string{
	"availability",
	"avgDailyPrice.amount",
	"avgDailyPrice.currency",
	"completedTrips",
	"hostId",
	"id",
	"isAllStarHost",
	"isFavoritedBySearcher",
	"isNewListing",
	"location.city",
	"location.isDelivery",
	"location.locationId",
	"location.locationSlugs.en_CA",
	"location.state",
	"make",
	"model",
	"rating",
	"seoCategory",
	"tags[0].label",
	"tags[0].type",
	"tags[1].label",
	"tags[1].type",
	"tags[2].label",
	"tags[2].type",
	"type",
	"year",
}

// ParseSchemaVariant resolves a variant name. Empty selects the scoring variant.
func ParseSchemaVariant(s string) (SchemaVariant, error) {
	switch SchemaVariant(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaScoring:
		return SchemaScoring, nil
	case SchemaPlain:
		return SchemaPlain, nil
	}
	return "", fmt.Errorf("unknown schema variant: %q (want %q or %q)", s, SchemaScoring, SchemaPlain)
}

// Columns returns a copy of the variant's built-in column list.
func (v SchemaVariant) Columns() []string {
	if v == SchemaPlain {
		return append([]string(nil), plainColumns...)
	}
	return append([]string(nil), scoringColumns...)
}
