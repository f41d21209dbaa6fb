package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/storage/memory"
	"github.com/scrypster/docgraph/pkg/types"
)

func newPipeline(t *testing.T) (*Pipeline, *memory.GraphStore) {
	t.Helper()
	store := memory.NewGraphStore()
	return NewPipeline(store, DefaultOptions()), store
}

func namesOfType(store *memory.GraphStore, entityType string) []string {
	var names []string
	for _, e := range store.GetEntitiesByType(entityType) {
		names = append(names, e.Name)
	}
	return names
}

func TestClassifyPolicy(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Bank Loan Approval Policy.txt", PolicyLoan},
		{"Bank Customer Data Protection Policy.txt", PolicyDataProtection},
		{"Bank Fraud Prevention Policy.txt", PolicyFraud},
		{"employee_handbook.txt", PolicyGeneric},
		{"LOAN-terms.md", PolicyLoan},
		{"privacy protection.txt", PolicyDataProtection},
		{"loss prevention.txt", PolicyFraud},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPolicy(tt.filename))
		})
	}
}

func TestProcessDocument_CreditScoreRequirement(t *testing.T) {
	p, store := newPipeline(t)
	text := "1. Customers must have a minimum credit score of 700 to qualify for a loan."

	sum := p.ProcessDocument(text, "Bank Loan Approval Policy.txt", DocumentTypeBankingPolicy)

	assert.Equal(t, []string{"Loan Policy"}, namesOfType(store, types.EntityTypePolicy))
	reqs := store.GetEntitiesByType(types.EntityTypeRequirement)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Requirement 1", reqs[0].Name)
	assert.Equal(t, "Customers must have a minimum credit score of 700 to qualify for a loan.", reqs[0].Property("text"))
	assert.Equal(t, "Loan Policy", reqs[0].Property("section"), "no header seen yet")

	assert.Empty(t, store.GetEntitiesByType(types.EntityTypeThreshold))
	assert.Empty(t, store.GetEntitiesByType(types.EntityTypePercentage))
	assert.Empty(t, store.GetEntitiesByType(types.EntityTypeTimePeriod))
	assert.Equal(t, []string{"Customer"}, namesOfType(store, types.EntityTypeRole))

	role := store.GetEntitiesByType(types.EntityTypeRole)[0]
	var involves int
	for _, r := range store.GetRelationshipsForEntity(role.ID) {
		if r.Type == types.RelInvolves {
			assert.Equal(t, reqs[0].ID, r.Source)
			involves++
		}
	}
	assert.Equal(t, 1, involves)

	assert.Equal(t, []string{reqs[0].ID}, sum.RequirementIDs)
	assert.Equal(t, store.Stats().EntityCount, sum.EntityCount)
	assert.Len(t, sum.EntityIDs, 3)
	assert.Len(t, sum.ChunkIDs, 1)
}

func TestProcessDocument_LargeLoanThreshold(t *testing.T) {
	p, store := newPipeline(t)
	text := "Lending Limits\n4. Large loans ($50,000+) require approval from the Senior Loan Officer."

	p.ProcessDocument(text, "Bank Loan Approval Policy.txt", DocumentTypeBankingPolicy)

	thresholds := store.GetEntitiesByType(types.EntityTypeThreshold)
	require.Len(t, thresholds, 1)
	assert.Equal(t, "$50,000 Threshold", thresholds[0].Name)
	amount, ok := thresholds[0].Properties.Int("amount")
	require.True(t, ok)
	assert.Equal(t, int64(50000), amount)

	assert.Contains(t, namesOfType(store, types.EntityTypeRole), "Senior Loan Officer")
	assert.Contains(t, namesOfType(store, types.EntityTypeRole), "Officer")

	req := store.GetEntitiesByType(types.EntityTypeRequirement)[0]
	assert.Equal(t, "Requirement 4", req.Name)
	assert.Equal(t, "Lending Limits", req.Property("section"))
}

func TestProcessDocument_DurationsAndPercentages(t *testing.T) {
	p, store := newPipeline(t)
	text := "Bank Loan Approval Policy\n\n" +
		"2. Loan applications must be reviewed within 5 business days.\n" +
		"5. If a customer has a debt-to-income ratio higher than 40%, additional checks are required.\n" +
		"6. Fraud reports must be resolved within 72 Hours."

	p.ProcessDocument(text, "loan.txt", DocumentTypeBankingPolicy)

	assert.Equal(t, []string{"5 business day", "72 Hour"}, namesOfType(store, types.EntityTypeTimePeriod))

	pcts := store.GetEntitiesByType(types.EntityTypePercentage)
	require.Len(t, pcts, 1)
	assert.Equal(t, "40%", pcts[0].Name)
	v, ok := pcts[0].Properties.Int("value")
	require.True(t, ok)
	assert.Equal(t, int64(40), v)

	for _, r := range store.Relationships() {
		if r.Target == pcts[0].ID {
			assert.Equal(t, types.RelSpecifies, r.Type)
		}
	}
}

func TestProcessDocument_PolicyChunkMetadata(t *testing.T) {
	p, store := newPipeline(t)
	text := "Bank Fraud Prevention Policy\n\n1. Transactions above $10,000 require additional verification."
	p.ProcessDocument(text, "Bank Fraud Prevention Policy.txt", DocumentTypeBankingPolicy)

	chunks := store.TextChunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	src, _ := chunks[0].Metadata.String("source")
	pol, _ := chunks[0].Metadata.String("policy")
	assert.Equal(t, "Bank Fraud Prevention Policy.txt", src)
	assert.Equal(t, "Fraud Prevention Policy", pol)

	req := store.GetEntitiesByType(types.EntityTypeRequirement)[0]
	assert.Equal(t, "Bank Fraud Prevention Policy", req.Property("section"))
}

func TestProcessDocument_PolicyCrossLinks(t *testing.T) {
	p, store := newPipeline(t)

	first := p.ProcessDocument("1. Customer data must be encrypted.", "data.txt", DocumentTypeBankingPolicy)
	assert.Empty(t, relsOfType(store, types.RelRelatedTo), "a single policy is not linked")

	second := p.ProcessDocument("1. Transactions above $10,000 require verification.", "fraud.txt", DocumentTypeBankingPolicy)
	related := relsOfType(store, types.RelRelatedTo)
	require.Len(t, related, 1)
	assert.Equal(t, second.PolicyID, related[0].Source)
	assert.Equal(t, first.PolicyID, related[0].Target)
	assert.Equal(t, 0.7, related[0].Confidence)

	// Reprocessing duplicates the policy and links it to both existing ones.
	p.ProcessDocument("1. Customer data must be encrypted.", "data.txt", DocumentTypeBankingPolicy)
	assert.Len(t, relsOfType(store, types.RelRelatedTo), 3)
	assert.Len(t, store.GetEntitiesByType(types.EntityTypePolicy), 3)
}

func TestProcessDocument_DedupePolicyLinks(t *testing.T) {
	store := memory.NewGraphStore()
	p := NewPipeline(store, Options{LinkPolicies: true, DedupePolicyLinks: true})

	p.ProcessDocument("1. Customer data must be encrypted.", "data.txt", DocumentTypeBankingPolicy)
	p.ProcessDocument("1. Customer data must be encrypted.", "data.txt", DocumentTypeBankingPolicy)
	assert.Empty(t, relsOfType(store, types.RelRelatedTo))

	p.ProcessDocument("1. Loans need approval.", "loan.txt", DocumentTypeBankingPolicy)
	assert.Len(t, relsOfType(store, types.RelRelatedTo), 2)
}

func TestProcessDocument_LinkingDisabled(t *testing.T) {
	store := memory.NewGraphStore()
	p := NewPipeline(store, Options{})

	p.ProcessDocument("1. a", "data.txt", DocumentTypeBankingPolicy)
	p.ProcessDocument("1. b", "loan.txt", DocumentTypeBankingPolicy)
	assert.Empty(t, relsOfType(store, types.RelRelatedTo))
}

func TestProcessDocument_UnknownTypeIsGeneric(t *testing.T) {
	p, store := newPipeline(t)
	sum := p.ProcessDocument("hello", "notes.txt", "memo")

	assert.Equal(t, DocumentTypeGeneric, sum.DocumentType)
	assert.NotEmpty(t, sum.DocumentID)
	assert.Equal(t, []string{"notes.txt"}, namesOfType(store, types.EntityTypeDocument))
}

func TestProcessDocument_EmptyTextNeverFails(t *testing.T) {
	p, store := newPipeline(t)

	p.ProcessDocument("", "empty.txt", DocumentTypeBankingPolicy)
	p.ProcessDocument("", "empty.txt", DocumentTypeGeneric)

	st := store.Stats()
	assert.Equal(t, map[string]int{"Policy": 1, "Document": 1}, st.EntityTypes)
	assert.Equal(t, 2, st.TextChunkCount)
}

func relsOfType(store *memory.GraphStore, relType string) []*types.Relationship {
	var out []*types.Relationship
	for _, r := range store.Relationships() {
		if r.Type == relType {
			out = append(out, r)
		}
	}
	return out
}
