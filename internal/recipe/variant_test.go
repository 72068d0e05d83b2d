package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneOrManyUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
		isOne  bool
		errAt  string
		failed bool
	}{
		{name: "scalar", input: `"Goulash"`, want: []string{"Goulash"}, isOne: true},
		{name: "list", input: `["Europe","Hungary"]`, want: []string{"Europe", "Hungary"}},
		{name: "empty list", input: `[]`, want: []string{}},
		{name: "number", input: `5`, failed: true, errAt: "."},
		{name: "list with number", input: `["a",5]`, failed: true, errAt: "[1]"},
		{name: "null element", input: `["a",null]`, failed: true, errAt: "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v OneOrMany[string]
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.failed {
				var de *DecodeError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.errAt, de.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Slice())
			assert.Equal(t, tt.isOne, v.IsOne())
		})
	}
}

func TestOneOrManyZeroValue(t *testing.T) {
	var v OneOrMany[int]
	assert.False(t, v.IsOne())
	assert.Equal(t, []int{}, v.Slice())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestOneOrManyMarshalKeepsShape(t *testing.T) {
	data, err := json.Marshal(One("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `"x"`, string(data))

	data, err = json.Marshal(Many("x", "y"))
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(data))
}

func TestOneOrManySliceIsACopy(t *testing.T) {
	v := Many("a", "b")
	s := v.Slice()
	s[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, v.Slice())
}

func TestInstructionsNormalizeToSameSequence(t *testing.T) {
	inputs := []string{
		`["Chop","Fry","Serve"]`,
		`[{"text":"Chop"},{"text":"Fry"},{"text":"Serve"}]`,
	}
	for _, input := range inputs {
		var in Instructions
		require.NoError(t, json.Unmarshal([]byte(input), &in))
		assert.Equal(t, []string{"Chop", "Fry", "Serve"}, in.Slice())
	}

	var single Instructions
	require.NoError(t, json.Unmarshal([]byte(`"Chop, fry and serve"`), &single))
	assert.Equal(t, []string{"Chop, fry and serve"}, single.Slice())
}

func TestInstructionsZeroValue(t *testing.T) {
	var in Instructions
	assert.Equal(t, []string{}, in.Slice())
}

func TestInstructionsMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Instructions
		want string
	}{
		{name: "single", in: SingleInstruction("Chop"), want: `"Chop"`},
		{name: "list", in: InstructionList("Chop", "Fry"), want: `["Chop","Fry"]`},
		{name: "steps", in: StepList(HowToStep{Text: "Chop"}), want: `[{"text":"Chop"}]`},
		{name: "zero", in: Instructions{}, want: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Instructions
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in.Slice(), back.Slice())
		})
	}
}

func TestInstructionsRejectsObject(t *testing.T) {
	var in Instructions
	err := json.Unmarshal([]byte(`{"text":"Chop"}`), &in)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindType, de.Kind)
	assert.Equal(t, ".", de.Path)
}
