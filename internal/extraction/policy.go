package extraction

import (
	"strconv"
	"strings"

	"github.com/scrypster/docgraph/pkg/types"
)

// Policy type names produced by ClassifyPolicy.
const (
	PolicyLoan           = "Loan Policy"
	PolicyDataProtection = "Data Protection Policy"
	PolicyFraud          = "Fraud Prevention Policy"
	PolicyGeneric        = "Bank Policy"
)

// ClassifyPolicy derives a policy type from keywords in the file name.
func ClassifyPolicy(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "loan"):
		return PolicyLoan
	case strings.Contains(lower, "data"), strings.Contains(lower, "protection"):
		return PolicyDataProtection
	case strings.Contains(lower, "fraud"), strings.Contains(lower, "prevention"):
		return PolicyFraud
	default:
		return PolicyGeneric
	}
}

func (p *Pipeline) processPolicy(rec *recorder, text, filename string) {
	policyType := ClassifyPolicy(filename)

	policyID := rec.entity(types.EntityTypePolicy, policyType,
		types.Properties{"filename": types.StringValue(filename)}, confidenceAnchor)
	rec.summary.PolicyID = policyID

	rec.chunk(text, types.Properties{
		"source": types.StringValue(filename),
		"policy": types.StringValue(policyType),
	})

	section := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !numberedLineRe.MatchString(line) {
			section = line
			continue
		}

		m := requirementRe.FindStringSubmatch(line)
		if m == nil {
			// "12." with nothing after it.
			continue
		}
		reqText := m[2]
		reqSection := section
		if reqSection == "" {
			reqSection = policyType
		}

		reqID := rec.entity(types.EntityTypeRequirement, "Requirement "+m[1], types.Properties{
			"text":    types.StringValue(reqText),
			"section": types.StringValue(reqSection),
		}, confidenceRequirement)
		rec.summary.RequirementIDs = append(rec.summary.RequirementIDs, reqID)
		rec.relationship(types.RelHasRequirement, policyID, reqID, nil, confidenceAnchor)

		extractThresholds(rec, reqID, reqText)
		extractTimePeriods(rec, reqID, reqText)
		extractPercentages(rec, reqID, reqText)
		extractRoles(rec, reqID, reqText)
	}

	if p.opts.LinkPolicies {
		p.linkPolicies(rec, policyID, policyType)
	}
}

// linkPolicies connects the new policy to every other stored policy.
// Repeated ingestion of the same file keeps adding policies and links.
func (p *Pipeline) linkPolicies(rec *recorder, policyID, policyType string) {
	policies := p.store.GetEntitiesByType(types.EntityTypePolicy)
	if len(policies) < 2 {
		return
	}
	for _, other := range policies {
		if other.ID == policyID {
			continue
		}
		if p.opts.DedupePolicyLinks && other.Name == policyType {
			continue
		}
		rec.relationship(types.RelRelatedTo, policyID, other.ID,
			types.Properties{"reason": types.StringValue("Policy relationship")}, confidencePolicyLink)
	}
}

func extractThresholds(rec *recorder, reqID, text string) {
	for _, m := range moneyRe.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			// A bare "$," has no digits.
			continue
		}
		id := rec.entity(types.EntityTypeThreshold, "$"+m[1]+" Threshold", types.Properties{
			"amount": types.IntValue(amount),
			"text":   types.StringValue(text),
		}, confidenceMention)
		rec.relationship(types.RelMentions, reqID, id, nil, confidenceLink)
	}
}

func extractTimePeriods(rec *recorder, reqID, text string) {
	for _, m := range durationRe.FindAllStringSubmatch(text, -1) {
		id := rec.entity(types.EntityTypeTimePeriod, m[1]+" "+m[2], types.Properties{
			"text": types.StringValue(text),
		}, confidenceMention)
		rec.relationship(types.RelSpecifies, reqID, id, nil, confidenceLink)
	}
}

func extractPercentages(rec *recorder, reqID, text string) {
	for _, m := range percentRe.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		id := rec.entity(types.EntityTypePercentage, m[1]+"%", types.Properties{
			"value": types.IntValue(value),
			"text":  types.StringValue(text),
		}, confidenceMention)
		rec.relationship(types.RelSpecifies, reqID, id, nil, confidenceLink)
	}
}

func extractRoles(rec *recorder, reqID, text string) {
	for _, role := range roleVocabulary {
		if !containsFold(text, role) {
			continue
		}
		id := rec.entity(types.EntityTypeRole, capitalize(role), types.Properties{
			"text": types.StringValue(text),
		}, confidenceMention)
		rec.relationship(types.RelInvolves, reqID, id, nil, confidenceLink)
	}
}
