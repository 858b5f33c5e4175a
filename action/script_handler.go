package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// ScriptHandler evaluates a javascript expression against the instance
// context. The context is bound as $; whatever the script leaves in $ is
// returned as the context update.
func ScriptHandler(expression string) Handler {
	return func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		data, err := json.Marshal(wfContext)
		if err != nil {
			return nil, err
		}
		script := fmt.Sprintf("var $ = %s;\n%s", data, expression)
		vm := goja.New()
		if _, err := vm.RunString(script); err != nil {
			return nil, fmt.Errorf("error executing javascript %w", err)
		}
		val, err := vm.RunString("$")
		if err != nil {
			return nil, fmt.Errorf("error executing javascript %w", err)
		}
		res, err := json.Marshal(val.Export())
		if err != nil {
			return nil, err
		}
		var output map[string]any
		if err := json.Unmarshal(res, &output); err != nil {
			return nil, err
		}
		return output, nil
	}
}
