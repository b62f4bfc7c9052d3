package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryQueriesCarryMarkers(t *testing.T) {
	findings, err := lintPaths([]string{"../../sqlinline"})
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCheckFlagsMissingAndDuplicateMarkers(t *testing.T) {
	src := []byte("package q\n\n" +
		"const QOk = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n" +
		"const QBare = `select 2;`\n" +
		"const QCopy = `--sql 11111111-2222-4333-8444-555555555555\nselect 3;`\n" +
		"const Label = \"hello\"\n")

	queries, err := collect("q.go", src)
	require.NoError(t, err)
	require.Len(t, queries, 3)

	findings := check(queries)
	require.Len(t, findings, 2)
	assert.Equal(t, "QBare", findings[0].name)
	assert.Contains(t, findings[0].message, "missing")
	assert.Equal(t, "QCopy", findings[1].name)
	assert.Contains(t, findings[1].message, "QOk")
}

func TestFirstLineSkipsLeadingBlankLines(t *testing.T) {
	assert.Equal(t, "--sql x", firstLine("\n\n  --sql x\nselect"))
}
