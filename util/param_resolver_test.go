package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveInputParams(t *testing.T) {
	contextData := map[string]any{
		"term": map[string]any{
			"code": "E11.101",
			"name": "type 2 diabetes",
		},
		"reviewer": "alice",
		"score":    float64(88),
	}

	params := map[string]any{
		"code":    "{$.term.code}",
		"summary": "{$.term.name} reviewed by {$.reviewer}",
		"static":  "unchanged",
		"number":  42,
		"nested": map[string]any{
			"who": "{$.reviewer}",
		},
		"list": []any{"{$.term.code}", "literal"},
	}

	out := ResolveInputParams(contextData, params)

	require.Equal(t, "E11.101", out["code"])
	require.Equal(t, "type 2 diabetes reviewed by alice", out["summary"])
	require.Equal(t, "unchanged", out["static"])
	require.Equal(t, 42, out["number"])
	require.Equal(t, map[string]any{"who": "alice"}, out["nested"])
	require.Equal(t, []any{"E11.101", "literal"}, out["list"])
}

func TestResolveMissingPathLeftAsIs(t *testing.T) {
	out := ResolveInputParams(map[string]any{}, map[string]any{
		"value": "{$.does.not.exist}",
		"plain": "{not a path}",
	})
	require.Equal(t, "{$.does.not.exist}", out["value"])
	require.Equal(t, "{not a path}", out["plain"])
}
