package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	maxLine  = 2000
	maxToken = 30
)

func TestParseSingleStage(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("ls -la", maxLine, maxToken)
	require.NoError(err)
	require.Len(line.Stages, 1)
	assert.Equal([]string{"ls", "-la"}, line.Stages[0].Argv)
	assert.False(line.Background)
}

func TestParseRedirections(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("cat < in.txt > out.txt 2> err.txt", maxLine, maxToken)
	require.NoError(err)
	require.Len(line.Stages, 1)
	assert.Equal([]string{"cat"}, line.Stages[0].Argv)
	assert.Equal(Redirection{Stdin: "in.txt", Stdout: "out.txt", Stderr: "err.txt"}, line.Stages[0].Redir)
}

func TestParseRedirectionOrderIrrelevant(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("cat > out.txt < in.txt", maxLine, maxToken)
	require.NoError(err)
	assert.Equal("in.txt", line.Stages[0].Redir.Stdin)
	assert.Equal("out.txt", line.Stages[0].Redir.Stdout)
}

func TestParseDuplicateRedirectionUsesLast(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("cat > first.txt > second.txt", maxLine, maxToken)
	require.NoError(err)
	assert.Equal("second.txt", line.Stages[0].Redir.Stdout)
}

func TestParsePipeline(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("cat < in.txt | wc -l > out.txt", maxLine, maxToken)
	require.NoError(err)
	require.Len(line.Stages, 2)
	assert.Equal([]string{"cat"}, line.Stages[0].Argv)
	assert.Equal("in.txt", line.Stages[0].Redir.Stdin)
	assert.Equal([]string{"wc", "-l"}, line.Stages[1].Argv)
	assert.Equal("out.txt", line.Stages[1].Redir.Stdout)
}

func TestParseBackground(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	line, err := Parse("sleep 100 &", maxLine, maxToken)
	require.NoError(err)
	assert.True(line.Background)
	assert.Equal([]string{"sleep", "100"}, line.Stages[0].Argv)
}

func TestParseTooManyPipes(t *testing.T) {
	_, err := Parse("a | b | c", maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrTooManyPipes, lexErr.Cause)
}

func TestParseEmptyLine(t *testing.T) {
	_, err := Parse("   ", maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrEmptyLine, lexErr.Cause)
}

func TestParseDanglingRedirect(t *testing.T) {
	_, err := Parse("cat >", maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrDanglingRedirect, lexErr.Cause)
}

func TestParseMissingProgram(t *testing.T) {
	_, err := Parse("< in.txt", maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrMissingProgram, lexErr.Cause)
}

func TestParseLineTooLong(t *testing.T) {
	raw := strings.Repeat("a ", maxLine)
	_, err := Parse(raw, maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrLineTooLong, lexErr.Cause)
}

func TestParseTokenTooLong(t *testing.T) {
	raw := strings.Repeat("a", maxToken+1)
	_, err := Parse(raw, maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrTokenTooLong, lexErr.Cause)
}

func TestParseLineTooLongTakesPrecedenceOverTokenTooLong(t *testing.T) {
	// Per SPEC_FULL.md §11, a line that is both too long and contains an
	// over-long token reports the line-length failure first.
	raw := strings.Repeat("a", maxToken+1) + strings.Repeat(" b", maxLine)
	_, err := Parse(raw, maxLine, maxToken)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrLineTooLong, lexErr.Cause)
}

func TestParseOperatorRecognizedOnlyStandalone(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// "2>file" with no space is one token, not an operator + target.
	line, err := Parse("echo 2>file", maxLine, maxToken)
	require.NoError(err)
	assert.Equal([]string{"echo", "2>file"}, line.Stages[0].Argv)
	assert.Empty(line.Stages[0].Redir.Stderr)
}
