// Package engine answers questions against the knowledge graph and walks
// entity neighbourhoods within resource bounds.
package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// Fixed answers.
const (
	AnswerNotEnoughInformation = "I don't have enough information to answer that specific question. Please try asking about credit scores, loan approvals, data deletion, transaction verification, or fraud prevention."

	directPrefix   = "Based on the available information: "
	combinedPrefix = "Based on the available information:\n\n"
	entityPrefix   = "Based on your query, I found these relevant items in the knowledge base:\n\n"
	entitySuffix   = "\n\nFor more specific information, please try refining your question."

	maxListedEntities = 5
	maxExamples       = 5
)

// Options tunes retrieval.
type Options struct {
	// MaxChunks caps the ranked chunk list.
	MaxChunks int

	// MinKeywordLen is the shortest question token, in runes, used as a
	// keyword.
	MinKeywordLen int

	// DirectAnswerThreshold is the similarity above which the top chunk is
	// returned on its own.
	DirectAnswerThreshold float64
}

// DefaultOptions returns the stock retrieval settings.
func DefaultOptions() Options {
	return Options{MaxChunks: 5, MinKeywordLen: 4, DirectAnswerThreshold: 0.5}
}

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.MaxChunks < 1 {
		o.MaxChunks = d.MaxChunks
	}
	if o.MinKeywordLen < 1 {
		o.MinKeywordLen = d.MinKeywordLen
	}
	if o.DirectAnswerThreshold <= 0 {
		o.DirectAnswerThreshold = d.DirectAnswerThreshold
	}
}

// Result is the answer to one question and the graph material behind it.
type Result struct {
	Question      string                `json:"question"`
	Answer        string                `json:"answer"`
	Keywords      []string              `json:"keywords"`
	Entities      []*types.Entity       `json:"entities"`
	Relationships []*types.Relationship `json:"relationships"`
	Chunks        []types.ScoredChunk   `json:"chunks"`

	// Trace is only filled by Explain.
	Trace []TraceEvent `json:"trace,omitempty"`
}

// QueryEngine retrieves by keyword overlap and synthesizes an answer. It
// only reads from the store.
type QueryEngine struct {
	store storage.GraphReader
	opts  Options
}

// NewQueryEngine creates an engine over store.
func NewQueryEngine(store storage.GraphReader, opts Options) *QueryEngine {
	opts.normalize()
	return &QueryEngine{store: store, opts: opts}
}

// Keywords lower-cases the whitespace-separated tokens of question and
// keeps those of at least minLen runes. Punctuation stays attached.
func Keywords(question string, minLen int) []string {
	var out []string
	for _, tok := range strings.Fields(question) {
		if utf8.RuneCountInString(tok) >= minLen {
			out = append(out, strings.ToLower(tok))
		}
	}
	return out
}

// Query answers question. It never fails: an empty graph or a question
// without keywords gets the default answer and empty result lists.
func (q *QueryEngine) Query(question string) *Result {
	return q.run(question, nil)
}

// Explain answers question like Query and records how the answer was
// reached in Result.Trace.
func (q *QueryEngine) Explain(question string) *Result {
	t := newTracer()
	res := q.run(question, t)
	res.Trace = t.events
	return res
}

func (q *QueryEngine) run(question string, t *tracer) *Result {
	keywords := Keywords(question, q.opts.MinKeywordLen)
	t.queryStarted(question, keywords)

	entities := q.relevantEntities(keywords)
	if t != nil {
		ids := make([]string, len(entities))
		for i, e := range entities {
			ids[i] = e.ID
		}
		t.idList(KindEntitiesMatched, ids)
	}

	res := &Result{
		Question:      question,
		Keywords:      append([]string{}, keywords...),
		Entities:      entities,
		Relationships: q.relevantRelationships(entities),
		Chunks:        q.rankChunks(keywords, t),
	}
	answer, strategy := q.answer(question, res)
	res.Answer = answer
	t.answerSelected(strategy)
	return res
}

func (q *QueryEngine) relevantEntities(keywords []string) []*types.Entity {
	out := []*types.Entity{}
	if len(keywords) == 0 {
		return out
	}
	for _, e := range q.store.Entities() {
		if matchesAny(e.Name, keywords) {
			out = append(out, e)
			continue
		}
		for _, v := range e.Properties {
			if s, ok := v.AsString(); ok && matchesAny(s, keywords) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (q *QueryEngine) relevantRelationships(entities []*types.Entity) []*types.Relationship {
	out := []*types.Relationship{}
	if len(entities) == 0 {
		return out
	}
	ids := make(map[string]bool, len(entities))
	for _, e := range entities {
		ids[e.ID] = true
	}
	for _, r := range q.store.Relationships() {
		if ids[r.Source] || ids[r.Target] {
			out = append(out, r)
		}
	}
	return out
}

// rankChunks scores each chunk by the fraction of keywords it contains.
// Chunks without a match are dropped; ties keep store order.
func (q *QueryEngine) rankChunks(keywords []string, t *tracer) []types.ScoredChunk {
	out := []types.ScoredChunk{}
	if len(keywords) == 0 {
		return out
	}
	for _, c := range q.store.TextChunks() {
		text := strings.ToLower(c.Text)
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		if matches > 0 {
			sim := float64(matches) / float64(len(keywords))
			t.chunkScored(c.ID, sim)
			out = append(out, types.ScoredChunk{Chunk: c, Similarity: sim})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > q.opts.MaxChunks {
		out = out[:q.opts.MaxChunks]
	}
	if t != nil {
		ids := make([]string, len(out))
		for i, sc := range out {
			ids[i] = sc.Chunk.ID
		}
		t.idList(KindChunksRanked, ids)
	}
	return out
}

func (q *QueryEngine) answer(question string, res *Result) (string, string) {
	lower := strings.ToLower(question)

	for _, sc := range shortcuts {
		if !sc.applies(lower) {
			continue
		}
		for _, e := range res.Entities {
			if sc.evidence(e) {
				return sc.answer, StrategyShortcut
			}
		}
		return sc.fallback, StrategyFallback
	}

	if len(res.Chunks) > 0 {
		top := res.Chunks[0]
		if top.Similarity > q.opts.DirectAnswerThreshold {
			return directPrefix + top.Chunk.Text, StrategyDirect
		}
		if len(res.Chunks) >= 2 {
			return combinedPrefix + res.Chunks[0].Chunk.Text + "\n" + res.Chunks[1].Chunk.Text, StrategyCombined
		}
	}

	if len(res.Entities) > 0 {
		var b strings.Builder
		b.WriteString(entityPrefix)
		for i, e := range res.Entities {
			if i == maxListedEntities {
				break
			}
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- " + e.Name + " (" + e.Type + ")")
		}
		b.WriteString(entitySuffix)
		return b.String(), StrategyEntities
	}

	return AnswerNotEnoughInformation, StrategyNone
}

// ExampleQuestions suggests questions the current graph can answer,
// padded from a fixed pool to five.
func (q *QueryEngine) ExampleQuestions() []string {
	var hasPolicy, hasLargeTransaction, hasDeletionWindow, hasCreditScore bool
	for _, e := range q.store.Entities() {
		hasPolicy = hasPolicy || e.Type == types.EntityTypePolicy
		hasLargeTransaction = hasLargeTransaction || verificationThreshold(e)
		hasDeletionWindow = hasDeletionWindow || deletionWindow(e)
		hasCreditScore = hasCreditScore || creditScoreEvidence(e)
	}

	questions := []string{}
	if hasPolicy {
		questions = append(questions, "What are the main policies in the system?")
	}
	if hasLargeTransaction {
		questions = append(questions, "What transactions require additional verification?")
	}
	if hasDeletionWindow {
		questions = append(questions, "How long do we have to process data deletion requests?")
	}
	if hasCreditScore {
		questions = append(questions, "What is the minimum credit score needed for a loan?")
	}

	for i := 0; len(questions) < maxExamples && i < len(genericQuestions); i++ {
		questions = append(questions, genericQuestions[i])
	}
	return questions
}

var genericQuestions = []string{
	"What are the requirements for large loans?",
	"How are customer data and fraud prevention related?",
	"What security measures are required for customer data?",
	"What happens when a transaction appears suspicious?",
	"How often are security audits conducted?",
}

func matchesAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
