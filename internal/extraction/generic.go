package extraction

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/scrypster/docgraph/pkg/types"
)

// Key-term selection.
const (
	keyTermLimit   = 10
	keyTermMinFreq = 3
)

func (p *Pipeline) processGeneric(rec *recorder, text, name string) {
	docID := rec.entity(types.EntityTypeDocument, name, types.Properties{
		"content_length": types.IntValue(int64(utf8.RuneCountInString(text))),
	}, confidenceAnchor)
	rec.summary.DocumentID = docID

	rec.chunk(text, types.Properties{"source": types.StringValue(name)})

	for i, para := range paragraphSplitRe.Split(text, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		rec.chunk(para, types.Properties{
			"source":    types.StringValue(name),
			"paragraph": types.IntValue(int64(i)),
		})

		excerpt := snippet(para, contextRunes)
		extractDates(rec, docID, para, excerpt)
		extractOrganizations(rec, docID, para, excerpt)
		extractQuantities(rec, docID, para, excerpt)
	}

	for _, term := range topTerms(text, keyTermLimit, keyTermMinFreq) {
		id := rec.entity(types.EntityTypeKeyTerm, capitalize(term.word), types.Properties{
			"frequency": types.IntValue(int64(term.count)),
		}, confidenceKeyTerm)
		rec.relationship(types.RelAppearsIn, id, docID, nil, confidenceKeyTerm)
	}
}

func extractDates(rec *recorder, docID, para, excerpt string) {
	for _, m := range dateRe.FindAllStringSubmatch(para, -1) {
		id := rec.entity(types.EntityTypeDate, m[1],
			types.Properties{"context": types.StringValue(excerpt)}, confidenceLink)
		rec.relationship(types.RelMentionedIn, id, docID, nil, confidenceLink)
	}
}

func extractOrganizations(rec *recorder, docID, para, excerpt string) {
	for _, m := range orgRe.FindAllStringSubmatch(para, -1) {
		id := rec.entity(types.EntityTypeOrganization, m[1],
			types.Properties{"context": types.StringValue(excerpt)}, confidenceOrganization)
		rec.relationship(types.RelMentionedIn, id, docID, nil, confidenceOrganization)
	}
}

func extractQuantities(rec *recorder, docID, para, excerpt string) {
	for _, m := range quantityRe.FindAllStringSubmatch(para, -1) {
		digits := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])

		var entityType, name string
		switch unit {
		case "percent", "%":
			entityType, name = types.EntityTypePercentage, digits+"%"
		case "dollars", "usd", "$":
			entityType, name = types.EntityTypeMonetaryValue, "$"+digits
		case "euros", "eur", "€":
			entityType, name = types.EntityTypeMonetaryValue, "€"+digits
		default:
			entityType, name = types.EntityTypeQuantity, digits+" "+unit
		}

		id := rec.entity(entityType, name, types.Properties{
			"value":   types.FloatValue(value),
			"unit":    types.StringValue(unit),
			"context": types.StringValue(excerpt),
		}, confidenceMention)
		rec.relationship(types.RelMentionedIn, id, docID, nil, confidenceMention)
	}
}
