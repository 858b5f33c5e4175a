package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvokeUnknownKeyIsNoop(t *testing.T) {
	registry := NewRegistry()
	updates, err := registry.Invoke(context.Background(), "not-registered", map[string]any{"a": 1})
	require.NoError(t, err)
	require.Nil(t, updates)
}

func TestInvokeDispatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		return map[string]any{"seen": wfContext["a"]}, nil
	})
	registry.Register("boom", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		return nil, errors.New("handler blew up")
	})

	updates, err := registry.Invoke(context.Background(), "ok", map[string]any{"a": "x"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"seen": "x"}, updates)

	_, err = registry.Invoke(context.Background(), "boom", nil)
	require.Error(t, err)

	require.ElementsMatch(t, []string{"ok", "boom"}, registry.Keys())
}

func TestScriptHandler(t *testing.T) {
	handler := ScriptHandler(`$.total = $.price * $.quantity; $.checked = true;`)
	updates, err := handler(context.Background(), map[string]any{
		"price":    float64(4),
		"quantity": float64(3),
	})
	require.NoError(t, err)
	require.Equal(t, float64(12), updates["total"])
	require.Equal(t, true, updates["checked"])

	broken := ScriptHandler(`this is not javascript`)
	_, err = broken(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestMapperHandler(t *testing.T) {
	handler := MapperHandler(map[string]any{
		"code":  "{$.term.code}",
		"fixed": "ICD-10",
	})
	updates, err := handler(context.Background(), map[string]any{
		"term": map[string]any{"code": "E11.101"},
	})
	require.NoError(t, err)
	require.Equal(t, "E11.101", updates["code"])
	require.Equal(t, "ICD-10", updates["fixed"])
}
