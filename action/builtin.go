package action

import (
	"context"
	"fmt"

	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/util"
	"go.uber.org/zap"
)

// MapperHandler projects values out of the instance context through
// {$.path} jsonpath templates and merges the projection back under the
// given keys.
func MapperHandler(params map[string]any) Handler {
	return func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		return util.ResolveInputParams(wfContext, params), nil
	}
}

// RegisterDefaults wires the generic handlers any definition may bind to
// plus the handlers the seeded templates reference. The extraction and
// compilation handlers are stand-ins for the document ingestion and rule
// compilation subsystems, which own the real implementations and replace
// these at wiring time.
func RegisterDefaults(r *Registry) {
	// A "script" node carries its javascript in the "expression" input
	// param; everything else in the merged input is bound as $.
	r.Register("script", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		expression, _ := wfContext["expression"].(string)
		if expression == "" {
			return nil, fmt.Errorf("script node has no expression input param")
		}
		input := make(map[string]any, len(wfContext))
		for k, v := range wfContext {
			if k == "expression" {
				continue
			}
			input[k] = v
		}
		return ScriptHandler(expression)(ctx, input)
	})
	// A "jsonmapper" node projects values out of the context through the
	// {$.path} templates under its "mapping" input param.
	r.Register("jsonmapper", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		mapping, ok := wfContext["mapping"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("jsonmapper node has no mapping input param")
		}
		return MapperHandler(mapping)(ctx, wfContext)
	})
	r.Register("terminology_publish", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		logger.Info("publishing terminology entry", zap.Any("term", wfContext["term"]))
		return map[string]any{"published": true}, nil
	})
	r.Register("rule_compile", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		logger.Info("compiling rule", zap.Any("policy", wfContext["policy"]))
		return map[string]any{"compiled": true}, nil
	})
	r.Register("rule_deploy", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		logger.Info("deploying rule", zap.Any("policy", wfContext["policy"]))
		return map[string]any{"deployed": true}, nil
	})
	r.Register("deepke_extraction", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		logger.Info("running policy document extraction")
		return map[string]any{"extraction_done": true}, nil
	})
	r.Register("nlp_compilation", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
		count := 1
		if entities, ok := wfContext["entities"].([]any); ok && len(entities) > 0 {
			count = len(entities)/2 + 1
		}
		return map[string]any{"compiled_rules_count": count}, nil
	})
}
