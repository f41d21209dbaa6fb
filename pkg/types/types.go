// Package types defines the core data structures of the document graph:
// entities, relationships, text chunks and their open property bags.
//
// Type labels are plain strings. The constants below name the labels the
// extraction pipeline and query engine use; other labels are equally valid.
package types

// Entity type labels produced by the extraction pipeline.
const (
	EntityTypePolicy        = "Policy"
	EntityTypeRequirement   = "Requirement"
	EntityTypeThreshold     = "Threshold"
	EntityTypeTimePeriod    = "TimePeriod"
	EntityTypePercentage    = "Percentage"
	EntityTypeRole          = "Role"
	EntityTypeDocument      = "Document"
	EntityTypeDate          = "Date"
	EntityTypeOrganization  = "Organization"
	EntityTypeMonetaryValue = "MonetaryValue"
	EntityTypeQuantity      = "Quantity"
	EntityTypeKeyTerm       = "KeyTerm"
)

// Relationship type labels produced by the extraction pipeline.
const (
	RelHasRequirement = "HAS_REQUIREMENT"
	RelMentions       = "MENTIONS"
	RelSpecifies      = "SPECIFIES"
	RelInvolves       = "INVOLVES"
	RelRelatedTo      = "RELATED_TO"
	RelMentionedIn    = "MENTIONED_IN"
	RelAppearsIn      = "APPEARS_IN"
)

// DefaultConfidence is used when a record omits confidence.
const DefaultConfidence = 1.0
