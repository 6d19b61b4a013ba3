package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_Stable(t *testing.T) {
	req := Request{
		Prefixes: PrefixTableOf(map[string]string{"foaf": "http://xmlns.com/foaf/0.1/"}),
		Criteria: []Criterion{Text("foaf:name", OpEQ, "Alice")},
	}

	id1, err := RequestID(req)
	require.NoError(t, err)
	id2, err := RequestID(req)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestRequestID_PrefixOrderIrrelevant(t *testing.T) {
	a := NewPrefixTable()
	require.NoError(t, a.Add("foaf", "http://xmlns.com/foaf/0.1/"))
	require.NoError(t, a.Add("dc", "http://purl.org/dc/terms/"))

	b := NewPrefixTable()
	require.NoError(t, b.Add("dc", "http://purl.org/dc/terms/"))
	require.NoError(t, b.Add("foaf", "http://xmlns.com/foaf/0.1/"))

	criteria := []Criterion{Exists("dc:title")}
	assert.Equal(t,
		MustRequestID(Request{Prefixes: a, Criteria: criteria}),
		MustRequestID(Request{Prefixes: b, Criteria: criteria}))
}

func TestRequestID_Distinguishes(t *testing.T) {
	base := Request{Criteria: []Criterion{Text("name", OpEQ, "Alice")}}

	variants := map[string]Request{
		"constraint": {Criteria: []Criterion{Text("name", OpEQ, "Bob")}},
		"operator":   {Criteria: []Criterion{Text("name", OpContains, "Alice")}},
		"numeric":    {Criteria: []Criterion{Number("name", OpEQ, "Alice")}},
		"root type":  {Criteria: base.Criteria, RootType: "http://example.org/Thing"},
		"limit":      {Criteria: base.Criteria, Limit: 10},
	}

	baseID := MustRequestID(base)
	for name, req := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, baseID, MustRequestID(req))
		})
	}
}

func TestRequestID_DefaultRootTypeEquivalent(t *testing.T) {
	criteria := []Criterion{Exists("name")}
	assert.Equal(t,
		MustRequestID(Request{Criteria: criteria}),
		MustRequestID(Request{Criteria: criteria, RootType: DefaultRootType}))
}

func TestQueryHash(t *testing.T) {
	assert.Equal(t, QueryHash("SELECT"), QueryHash("SELECT"))
	assert.NotEqual(t, QueryHash("SELECT"), QueryHash("SELECT "))
}
