package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// simplePattern matches {variable} markers.
	simplePattern = regexp.MustCompile(`\{(\w+)\}`)

	// fallbackPattern matches {primary|fallback} markers.
	fallbackPattern = regexp.MustCompile(`\{(\w+)\|(\w+)\}`)

	// conditionalPattern matches {?condition: content} markers where the
	// content may itself contain single-level {...} markers.
	conditionalPattern = regexp.MustCompile(`\{\?(\w+):\s*([^{}]*(?:\{[^}]*\}[^{}]*)*)\}`)

	// conditionalScanPattern is the looser form used for variable
	// extraction only.
	conditionalScanPattern = regexp.MustCompile(`\{\?(\w+):\s*([^}]*)\}`)
)

// Substitute resolves all template markers in order: conditional blocks
// (iterated so nesting works), fallback pairs, then simple variables.
// Unbalanced braces, missing variables, and unresolvable fallbacks all
// yield a TemplateError.
func Substitute(template string, variables map[string]interface{}) (string, error) {
	if !balanced(template) {
		return "", newTemplateError(template, "", "invalid template syntax")
	}

	result := template

	// Conditional blocks may reveal further conditionals once resolved, so
	// iterate until none remain.
	for {
		match := conditionalPattern.FindStringSubmatchIndex(result)
		if match == nil {
			break
		}

		condition := result[match[2]:match[3]]
		content := result[match[4]:match[5]]

		replacement := ""
		if truthy(variables[condition]) {
			processed, err := substituteSimple(content, variables, template)
			if err != nil {
				return "", err
			}
			if processed != "" && !strings.HasPrefix(processed, " ") {
				processed = " " + processed
			}
			replacement = processed
		}

		result = result[:match[0]] + replacement + result[match[1]:]
	}

	// Fallback pairs.
	for {
		match := fallbackPattern.FindStringSubmatchIndex(result)
		if match == nil {
			break
		}

		primary := result[match[2]:match[3]]
		fallback := result[match[4]:match[5]]

		var value string
		switch {
		case truthy(variables[primary]):
			value = valueString(variables[primary])
		case truthy(variables[fallback]):
			value = valueString(variables[fallback])
		default:
			return "", newTemplateError(template, primary,
				"neither primary variable %q nor fallback %q found", primary, fallback)
		}

		result = result[:match[0]] + value + result[match[1]:]
	}

	// Remaining simple variables.
	result, err := substituteSimple(result, variables, template)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// ExtractVariables returns the sorted set of variable names referenced by
// any marker form, for pre-flight validation by callers.
func ExtractVariables(template string) []string {
	names := make(map[string]bool)

	for _, match := range simplePattern.FindAllStringSubmatch(template, -1) {
		names[match[1]] = true
	}

	for _, match := range fallbackPattern.FindAllStringSubmatch(template, -1) {
		names[match[1]] = true
		names[match[2]] = true
	}

	for _, match := range conditionalScanPattern.FindAllStringSubmatch(template, -1) {
		names[match[1]] = true
		for _, inner := range simplePattern.FindAllStringSubmatch(match[2], -1) {
			names[inner[1]] = true
		}
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// substituteSimple resolves {variable} markers, failing on the first
// missing variable.
func substituteSimple(
	text string,
	variables map[string]interface{},
	original string,
) (string, error) {
	var missing string

	result := simplePattern.ReplaceAllStringFunc(text, func(marker string) string {
		if missing != "" {
			return marker
		}
		name := marker[1 : len(marker)-1]
		value, ok := variables[name]
		if !ok {
			missing = name
			return marker
		}
		return valueString(value)
	})

	if missing != "" {
		return "", newTemplateError(original, missing, "missing template variable: %s", missing)
	}

	return result, nil
}

// balanced reports whether every closing brace has a matching opener.
func balanced(template string) bool {
	depth := 0
	for _, char := range template {
		switch char {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// truthy mirrors the substitution semantics for conditionals and
// fallbacks: absent, nil, empty, zero, and false values do not count.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

func valueString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
