package engine

import "time"

// TraceEventKind classifies each trace event by type.
type TraceEventKind string

const (
	// KindQueryStarted records the question and its keywords.
	KindQueryStarted TraceEventKind = "query_started"

	// KindEntitiesMatched records which entities matched a keyword.
	KindEntitiesMatched TraceEventKind = "entities_matched"

	// KindChunkScored is emitted once per chunk that kept a non-zero score.
	KindChunkScored TraceEventKind = "chunk_scored"

	// KindChunksRanked records the chunk list after truncation.
	KindChunksRanked TraceEventKind = "chunks_ranked"

	// KindAnswerSelected records which strategy produced the answer.
	KindAnswerSelected TraceEventKind = "answer_selected"
)

// Answer strategies, in the order they are tried.
const (
	StrategyShortcut = "shortcut"
	StrategyFallback = "shortcut_fallback"
	StrategyDirect   = "direct"
	StrategyCombined = "combined"
	StrategyEntities = "entities"
	StrategyNone     = "none"
)

// TraceEvent is one step of answering a question.
type TraceEvent struct {
	Kind TraceEventKind `json:"kind"`
	At   time.Time      `json:"at"`

	Question string   `json:"question,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	// IDs lists matched entities or ranked chunks.
	IDs   []string `json:"ids,omitempty"`
	Count int      `json:"count,omitempty"`

	ChunkID string  `json:"chunk_id,omitempty"`
	Score   float64 `json:"score,omitempty"`

	Strategy string `json:"strategy,omitempty"`
}

// tracer collects events; a nil tracer drops them.
type tracer struct {
	events []TraceEvent
	now    func() time.Time
}

func newTracer() *tracer {
	return &tracer{now: time.Now}
}

func (t *tracer) add(e TraceEvent) {
	if t == nil {
		return
	}
	e.At = t.now()
	t.events = append(t.events, e)
}

func (t *tracer) queryStarted(question string, keywords []string) {
	t.add(TraceEvent{Kind: KindQueryStarted, Question: question, Keywords: keywords})
}

func (t *tracer) idList(kind TraceEventKind, ids []string) {
	t.add(TraceEvent{Kind: kind, IDs: ids, Count: len(ids)})
}

func (t *tracer) chunkScored(id string, score float64) {
	t.add(TraceEvent{Kind: KindChunkScored, ChunkID: id, Score: score})
}

func (t *tracer) answerSelected(strategy string) {
	t.add(TraceEvent{Kind: KindAnswerSelected, Strategy: strategy})
}
