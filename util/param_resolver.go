package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile(`{(.*?)}`)

// ResolveInputParams substitutes {$.path} templates in params with values
// looked up from the instance context. Maps and lists are resolved
// recursively, non-string values pass through untouched.
func ResolveInputParams(contextData map[string]any, inputParams map[string]any) map[string]any {
	out := make(map[string]any)
	resolveParams(contextData, inputParams, out)
	return out
}

func resolveParams(contextData map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		switch value := v.(type) {
		case map[string]any:
			inner := make(map[string]any)
			output[k] = inner
			resolveParams(contextData, value, inner)
		case string:
			output[k] = resolveString(contextData, value)
		case []any:
			output[k] = resolveList(contextData, value)
		default:
			output[k] = v
		}
	}
}

func resolveList(contextData map[string]any, list []any) []any {
	var output []any
	for _, v := range list {
		switch value := v.(type) {
		case map[string]any:
			inner := make(map[string]any)
			resolveParams(contextData, value, inner)
			output = append(output, inner)
		case string:
			output = append(output, resolveString(contextData, value))
		case []any:
			output = append(output, resolveList(contextData, value)...)
		default:
			output = append(output, v)
		}
	}
	return output
}

func resolveString(contextData map[string]any, in string) string {
	tokens := tokenPattern.FindAllString(in, -1)
	out := in
	for _, token := range tokens {
		path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(path, "$") {
			continue
		}
		value, err := jsonpath.JsonPathLookup(contextData, path)
		if err != nil {
			continue
		}
		out = strings.ReplaceAll(out, token, fmt.Sprintf("%v", value))
	}
	return out
}
