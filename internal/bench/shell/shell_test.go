package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/benchit/internal/bench/config"
)

func TestCompile_RunsSnippet(t *testing.T) {
	var out bytes.Buffer
	s, err := Compile(context.Background(), "greet", `x=1; echo "hi $x"`, Options{Stdout: &out})
	require.NoError(t, err)

	require.NoError(t, s.Run())
	require.NoError(t, s.Work()())
	assert.Equal(t, "hi 1\nhi 1\n", out.String())
}

func TestSnippet_ResetsStateBetweenRuns(t *testing.T) {
	var out bytes.Buffer
	s, err := Compile(context.Background(), "acc", `x="a$x"; echo "$x"`, Options{Stdout: &out, Env: []string{}})
	require.NoError(t, err)

	require.NoError(t, s.Run())
	require.NoError(t, s.Run())
	assert.Equal(t, "a\na\n", out.String())
}

func TestSnippet_ExitStatus(t *testing.T) {
	s, err := Compile(context.Background(), "fail", `exit 3`, Options{})
	require.NoError(t, err)

	err = s.Run()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "error %v should be an ExitError", err)
	assert.Equal(t, 3, exitErr.Status)
	assert.Equal(t, `snippet "fail" exited with status 3`, exitErr.Error())
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(context.Background(), "empty", "   ", Options{})
	assert.True(t, errors.Is(err, config.ErrConfiguration))

	_, err = Compile(context.Background(), "broken", `if then`, Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, config.ErrConfiguration))
}

func TestCompileAll(t *testing.T) {
	var out bytes.Buffer
	subs, err := CompileAll(context.Background(), config.SnippetList{
		{Name: "b", Run: "echo b"},
		{Name: "a", Run: "echo a"},
	}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b", subs[0].Name)

	for _, sub := range subs {
		require.NoError(t, sub.Work())
	}
	assert.Equal(t, "b\na\n", out.String())

	_, err = CompileAll(context.Background(), config.SnippetList{{Name: "x", Run: ""}}, Options{})
	assert.Error(t, err)
}
