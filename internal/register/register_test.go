package register

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "letters", token: "a"},
		{name: "mixed", token: "reg1"},
		{name: "leading digit", token: "1a"},
		{name: "number", token: "42", wantErr: true},
		{name: "negative number", token: "-7", wantErr: true},
		{name: "signed number", token: "+7", wantErr: true},
		{name: "empty", token: "", wantErr: true},
		{name: "beyond int32 is a name", token: "99999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRegisterName), "expected ErrInvalidRegisterName, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Name(tt.token), got)
		})
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("a", "add", "5")
	require.NoError(t, err)
	assert.Equal(t, Name("a"), op.Target)
	assert.Equal(t, Add, op.Verb)
	_, isRef := op.Operand.Register()
	assert.False(t, isRef)
	assert.Equal(t, int32(5), op.Operand.Value())

	op, err = ParseOperation("a", "multiply", "b")
	require.NoError(t, err)
	assert.Equal(t, Multiply, op.Verb)
	ref, isRef := op.Operand.Register()
	require.True(t, isRef)
	assert.Equal(t, Name("b"), ref)
	assert.Equal(t, "a multiply b", op.String())

	op, err = ParseOperation("x", "subtract", "-12")
	require.NoError(t, err)
	assert.Equal(t, Subtract, op.Verb)
	assert.Equal(t, int32(-12), op.Operand.Value())
}

func TestParseOperation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    [3]string
		wantErr error
	}{
		{name: "numeric target", args: [3]string{"1", "add", "2"}, wantErr: ErrInvalidRegisterName},
		{name: "unknown verb", args: [3]string{"a", "divide", "2"}, wantErr: ErrUnknownVerb},
		{name: "verb is case sensitive", args: [3]string{"a", "ADD", "2"}, wantErr: ErrUnknownVerb},
		{name: "empty operand", args: [3]string{"a", "add", ""}, wantErr: ErrInvalidRegisterName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOperation(tt.args[0], tt.args[1], tt.args[2])
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
		})
	}
}

func TestParseOperand_OutOfRangeIsRegister(t *testing.T) {
	op, err := ParseOperand("2147483648")
	require.NoError(t, err)
	name, isRef := op.Register()
	require.True(t, isRef)
	assert.Equal(t, Name("2147483648"), name)

	op, err = ParseOperand("2147483647")
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), op.Value())
}

func TestVerb_ApplyWraps(t *testing.T) {
	assert.Equal(t, int32(math.MinInt32), Add.Apply(math.MaxInt32, 1))
	assert.Equal(t, int32(math.MaxInt32), Subtract.Apply(math.MinInt32, 1))
	assert.Equal(t, int32(-2), Multiply.Apply(math.MaxInt32, 2))
	assert.Equal(t, int32(10), Multiply.Apply(5, 2))
}

func TestVerbs(t *testing.T) {
	assert.Equal(t, []string{"add", "subtract", "multiply"}, Verbs())
	for _, s := range Verbs() {
		v, err := ParseVerb(s)
		require.NoError(t, err)
		assert.Equal(t, s, v.String())
	}
}
