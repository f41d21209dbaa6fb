package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/extraction"
	"github.com/scrypster/docgraph/internal/importer"
	"github.com/scrypster/docgraph/internal/storage/memory"
	"github.com/scrypster/docgraph/pkg/types"
)

func sampleGraph(t *testing.T) *memory.GraphStore {
	t.Helper()
	store := memory.NewGraphStore()
	loader := importer.NewLoader(extraction.NewPipeline(store, extraction.DefaultOptions()))
	_, err := loader.LoadSampleDocuments(filepath.Join(t.TempDir(), "bank_policies"))
	require.NoError(t, err)
	return store
}

func TestQuery_ShortcutsOnSampleCorpus(t *testing.T) {
	q := NewQueryEngine(sampleGraph(t), DefaultOptions())

	tests := map[string]string{
		"What is the minimum credit score needed for a loan?":     "According to the Bank Loan Approval Policy, customers must have a minimum credit score of 700 to qualify for a loan.",
		"How long do we have to process data deletion requests?": "According to the Bank Customer Data Protection Policy, customer requests for data deletion must be processed within 30 days.",
		"What transactions require additional verification?":     "According to the Bank Fraud Prevention Policy, transactions above $10,000 require additional verification.",
	}
	for question, want := range tests {
		t.Run(question, func(t *testing.T) {
			res := q.Query(question)
			assert.Equal(t, want, res.Answer)
			assert.NotEmpty(t, res.Entities)
			assert.NotEmpty(t, res.Chunks)
		})
	}
}

func TestQuery_ShortcutFallbacks(t *testing.T) {
	q := NewQueryEngine(memory.NewGraphStore(), DefaultOptions())

	assert.Equal(t,
		"Based on the bank's loan policies, a minimum credit score is required for loan approval, but I couldn't find the exact threshold in the provided information.",
		q.Query("Which credit score applies?").Answer)
	assert.Equal(t,
		"The Bank Customer Data Protection Policy requires timely processing of data deletion requests, but I couldn't find the exact timeframe in the provided information.",
		q.Query("Handling a deletion request").Answer)
	assert.Equal(t,
		"The Bank Fraud Prevention Policy requires additional verification for transactions above certain thresholds, but I couldn't find the exact amount in the provided information.",
		q.Query("When must we verify a transaction?").Answer)
}

func TestQuery_RankingBySimilarity(t *testing.T) {
	store := memory.NewGraphStore()
	weak := store.AddTextChunk("Delta only here", nil)
	store.AddTextChunk("nothing relevant", nil)
	strong := store.AddTextChunk("alpha, bravo and charlie", nil)

	res := NewQueryEngine(store, DefaultOptions()).Query("alpha bravo charlie delta")

	require.Len(t, res.Chunks, 2)
	assert.Equal(t, strong, res.Chunks[0].Chunk.ID)
	assert.Equal(t, 0.75, res.Chunks[0].Similarity)
	assert.Equal(t, weak, res.Chunks[1].Chunk.ID)
	assert.Equal(t, 0.25, res.Chunks[1].Similarity)
	assert.Equal(t, "Based on the available information: alpha, bravo and charlie", res.Answer)
}

func TestQuery_CombinesTopTwoWeakChunks(t *testing.T) {
	store := memory.NewGraphStore()
	store.AddTextChunk("first about alpha", nil)
	store.AddTextChunk("second about bravo", nil)
	store.AddTextChunk("third about charlie", nil)

	res := NewQueryEngine(store, DefaultOptions()).Query("alpha bravo charlie delta")

	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "Based on the available information:\n\nfirst about alpha\nsecond about bravo", res.Answer)
}

func TestQuery_ListsEntitiesWhenChunksAreWeak(t *testing.T) {
	store := memory.NewGraphStore()
	store.AddTextChunk("mentions alpha once", nil)
	for i := 0; i < 6; i++ {
		store.AddEntity("KeyTerm", "Alpha", nil, 0.6)
	}
	store.AddEntity("KeyTerm", "Unrelated", nil, 0.6)

	res := NewQueryEngine(store, DefaultOptions()).Query("alpha bravo charlie delta")

	assert.Len(t, res.Entities, 6)
	assert.Equal(t, "Based on your query, I found these relevant items in the knowledge base:\n\n"+
		"- Alpha (KeyTerm)\n- Alpha (KeyTerm)\n- Alpha (KeyTerm)\n- Alpha (KeyTerm)\n- Alpha (KeyTerm)"+
		"\n\nFor more specific information, please try refining your question.", res.Answer)
}

func TestQuery_EntityAndRelationshipRelevance(t *testing.T) {
	store := memory.NewGraphStore()
	byName := store.AddEntity(types.EntityTypeRole, "Fraud detection team", nil, 0.85)
	byProp := store.AddEntity(types.EntityTypeRequirement, "Requirement 3", types.Properties{
		"text":  types.StringValue("If a transaction appears suspicious, the FRAUD team is alerted."),
		"count": types.IntValue(3),
	}, 0.9)
	other := store.AddEntity(types.EntityTypePolicy, "Loan Policy", nil, 0.95)
	numeric := store.AddEntity(types.EntityTypePercentage, "40%", types.Properties{"value": types.IntValue(40)}, 0.85)

	rel1 := store.AddRelationship(types.RelInvolves, byProp, byName, nil, 0.8)
	rel2 := store.AddRelationship(types.RelHasRequirement, other, byProp, nil, 0.95)
	store.AddRelationship(types.RelSpecifies, other, numeric, nil, 0.8)

	res := NewQueryEngine(store, DefaultOptions()).Query("fraud")

	var ids []string
	for _, e := range res.Entities {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{byName, byProp}, ids)

	var relIDs []string
	for _, r := range res.Relationships {
		relIDs = append(relIDs, r.ID)
	}
	assert.Equal(t, []string{rel1, rel2}, relIDs)
}

func TestQuery_MaxChunksKeepsStoreOrderOnTies(t *testing.T) {
	store := memory.NewGraphStore()
	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, store.AddTextChunk("audit log entry", nil))
	}

	res := NewQueryEngine(store, DefaultOptions()).Query("audit")
	require.Len(t, res.Chunks, 5)
	for i, sc := range res.Chunks {
		assert.Equal(t, ids[i], sc.Chunk.ID)
		assert.Equal(t, 1.0, sc.Similarity)
	}

	narrow := NewQueryEngine(store, Options{MaxChunks: 2}).Query("audit")
	assert.Len(t, narrow.Chunks, 2)
}

func TestQuery_NoKeywordsOrEmptyGraph(t *testing.T) {
	q := NewQueryEngine(sampleGraph(t), DefaultOptions())
	res := q.Query("Is it ok?")
	assert.Equal(t, AnswerNotEnoughInformation, res.Answer)
	assert.Empty(t, res.Keywords)
	assert.NotNil(t, res.Entities)
	assert.Empty(t, res.Entities)
	assert.Empty(t, res.Relationships)
	assert.Empty(t, res.Chunks)

	empty := NewQueryEngine(memory.NewGraphStore(), DefaultOptions())
	assert.Equal(t, AnswerNotEnoughInformation, empty.Query("Tell me about mortgages").Answer)
	assert.Equal(t, AnswerNotEnoughInformation, empty.Query("").Answer)
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"what", "minimum", "credit", "score", "needed", "loan?"},
		Keywords("What is the minimum credit score needed for a loan?", 4))
	assert.Equal(t, []string{"über"}, Keywords("über ein", 4), "length counts runes")
	assert.Empty(t, Keywords("a an the", 4))
}

func TestExampleQuestions(t *testing.T) {
	empty := NewQueryEngine(memory.NewGraphStore(), DefaultOptions())
	assert.Equal(t, genericQuestions, empty.ExampleQuestions())

	q := NewQueryEngine(sampleGraph(t), DefaultOptions())
	assert.Equal(t, []string{
		"What are the main policies in the system?",
		"What transactions require additional verification?",
		"How long do we have to process data deletion requests?",
		"What is the minimum credit score needed for a loan?",
		"What are the requirements for large loans?",
	}, q.ExampleQuestions())
	assert.Equal(t, q.ExampleQuestions(), q.ExampleQuestions())
}
