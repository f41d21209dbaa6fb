package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/scrypster/docgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONKeepsVariant(t *testing.T) {
	props := types.Properties{
		"amount": types.IntValue(50000),
		"value":  types.FloatValue(40),
		"ratio":  types.FloatValue(0.25),
		"text":   types.StringValue("Large loans ($50,000+)"),
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)

	var back types.Properties
	require.NoError(t, json.Unmarshal(data, &back))

	amount, ok := back.Int("amount")
	require.True(t, ok)
	assert.Equal(t, int64(50000), amount)

	assert.Equal(t, types.KindFloat, back["value"].Kind(), "whole floats must stay floats")
	v, _ := back.Float("value")
	assert.Equal(t, 40.0, v)

	text, ok := back.String("text")
	require.True(t, ok)
	assert.Equal(t, "Large loans ($50,000+)", text)
	assert.Equal(t, props, back)
}

func TestValue_RejectsNonScalar(t *testing.T) {
	for _, raw := range []string{`{"a":true}`, `{"a":null}`, `{"a":[1]}`, `{"a":{}}`} {
		var p types.Properties
		assert.Error(t, json.Unmarshal([]byte(raw), &p), raw)
	}
}

func TestProperties_WrongKind(t *testing.T) {
	p := types.Properties{"amount": types.StringValue("50000")}

	_, ok := p.Int("amount")
	assert.False(t, ok)
	_, ok = p.Float("missing")
	assert.False(t, ok)

	f, ok := types.Properties{"n": types.IntValue(3)}.Float("n")
	assert.True(t, ok, "ints widen to float")
	assert.Equal(t, 3.0, f)
}

func TestValidate_MissingID(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"entity without id", (&types.Entity{Type: "Policy"}).Validate()},
		{"relationship without id", (&types.Relationship{Type: "X", Source: "a", Target: "b"}).Validate()},
		{"chunk without id", (&types.TextChunk{Text: "x"}).Validate()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, errors.Is(tt.err, types.ErrMissingField))
		})
	}
}

func TestValidate_AcceptsWhatAddAccepts(t *testing.T) {
	assert.NoError(t, (&types.Entity{ID: "entity-1", Confidence: 1.5}).Validate())
	assert.NoError(t, (&types.Entity{ID: "entity-1", Confidence: -0.2}).Validate())
	assert.NoError(t, (&types.Relationship{ID: "rel-1"}).Validate())
	assert.NoError(t, (&types.TextChunk{ID: "chunk-1"}).Validate())
}

func TestRelationship_Involves(t *testing.T) {
	r := &types.Relationship{Source: "a", Target: "b"}
	assert.True(t, r.Involves("a"))
	assert.True(t, r.Involves("b"))
	assert.False(t, r.Involves("c"))
}
