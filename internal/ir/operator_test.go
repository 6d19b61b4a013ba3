package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		input string
		want  Operator
	}{
		{"", OpNone},
		{"EQ", OpEQ},
		{"eq", OpEQ},
		{"=", OpEQ},
		{"==", OpEQ},
		{"gt", OpGT},
		{">", OpGT},
		{">=", OpGTE},
		{"<", OpLT},
		{"<=", OpLTE},
		{"contains", OpContains},
		{"STARTS_WITH", OpStartsWith},
		{" ends_with ", OpEndsWith},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOperator(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	_, err := ParseOperator("LIKE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIKE")
}

func TestOperatorDomains(t *testing.T) {
	for _, op := range []Operator{OpGT, OpGTE, OpLT, OpLTE} {
		assert.True(t, op.IsNumericOnly(), op.String())
		assert.False(t, op.IsTextualOnly(), op.String())
	}
	for _, op := range []Operator{OpContains, OpStartsWith, OpEndsWith} {
		assert.True(t, op.IsTextualOnly(), op.String())
		assert.False(t, op.IsNumericOnly(), op.String())
	}
	assert.False(t, OpEQ.IsNumericOnly())
	assert.False(t, OpEQ.IsTextualOnly())
}

func TestOperator_Valid(t *testing.T) {
	assert.True(t, OpNone.Valid())
	assert.True(t, OpEndsWith.Valid())
	assert.False(t, Operator(99).Valid())
	assert.Equal(t, "Operator(99)", Operator(99).String())
}

func TestCriterion_DecodeJSON(t *testing.T) {
	var c Criterion
	err := json.Unmarshal([]byte(`{"path":"foaf:age","op":">=","value":"18","numeric":true}`), &c)
	require.NoError(t, err)
	assert.Equal(t, Number("foaf:age", OpGTE, "18"), c)

	out, err := json.Marshal(Exists("foaf:name"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"foaf:name"}`, string(out))
}

func TestCriterion_DecodeYAML(t *testing.T) {
	var c Criterion
	err := yaml.Unmarshal([]byte("path: foaf:name\nop: starts_with\nvalue: Al\n"), &c)
	require.NoError(t, err)
	assert.Equal(t, Text("foaf:name", OpStartsWith, "Al"), c)
}

func TestCriterion_DecodeUnknownOperator(t *testing.T) {
	var c Criterion
	err := json.Unmarshal([]byte(`{"path":"x","op":"LIKE"}`), &c)
	require.Error(t, err)
}
