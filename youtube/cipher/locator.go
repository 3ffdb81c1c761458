package cipher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ytget/ytcore/internal/logger"
)

// Operations is what Locate recovers from one player script: the decipher
// function and the helper object it calls into, if any. Values are immutable
// and safe to cache by script identity.
type Operations struct {
	FunctionName string `json:"function_name"`
	Params       string `json:"params"`
	Body         string `json:"body"`
	// FunctionSource is the function rebuilt as a standalone declaration.
	FunctionSource string `json:"function_source"`

	HelperName   string `json:"helper_name,omitempty"`
	HelperSource string `json:"helper_source,omitempty"`
}

// HasHelper reports whether a helper object definition was recovered.
func (o Operations) HasHelper() bool {
	return o.HelperName != "" && o.HelperSource != ""
}

const identClass = `[a-zA-Z0-9$_]`

// FunctionPatterns find the decipher function name. Each must capture the
// name in group 1 and is tried in order. The function takes one argument and
// splits it into characters first thing.
var FunctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(` + identClass + `{2,})\s*=\s*function\s*\(\s*a\s*\)\s*\{\s*a\s*=\s*a\.split\(\s*(?:""|'')\s*\)`),
	regexp.MustCompile(`\bfunction\s+(` + identClass + `{2,})\s*\(\s*a\s*\)\s*\{\s*a\s*=\s*a\.split\(\s*(?:""|'')\s*\)`),
	regexp.MustCompile(`(` + identClass + `{2,})\s*:\s*function\s*\(\s*a\s*\)\s*\{\s*a\s*=\s*a\.split\(\s*(?:""|'')\s*\)`),
}

// HelperCallPattern finds `object.method(` calls inside the function body.
// Group 1 is the object, group 2 the method.
var HelperCallPattern = regexp.MustCompile(`(?:^|[^a-zA-Z0-9$_.])(` + identClass + `{2,})\.(` + identClass + `{2,})\s*\(`)

// definitionTemplates locate a named function and end right after its
// opening brace. %s is the quoted name; group 1 holds the parameter list.
var definitionTemplates = []string{
	`\bfunction\s+%s\s*\(([^)]*)\)\s*\{`,
	`(?:^|[^a-zA-Z0-9$_.])%s\s*=\s*function\s*\(([^)]*)\)\s*\{`,
	`(?:^|[^a-zA-Z0-9$_.])%s\s*:\s*function\s*\(([^)]*)\)\s*\{`,
}

// helperTemplates locate an object literal assignment and end right after
// its opening brace. %s is the quoted name.
var helperTemplates = []string{
	`(?:var|const|let)\s+%s\s*=\s*\{`,
	`[,;]\s*%s\s*=\s*\{`,
}

// builtinObjects are never treated as the helper object.
var builtinObjects = map[string]bool{
	"Math": true, "String": true, "Array": true, "Object": true, "JSON": true, "Number": true,
}

// Locate finds the decipher function in a player script together with its
// helper object. A missing function is an error; a missing helper is not,
// since some player versions inline every step.
func Locate(script string) (Operations, error) {
	log := logger.WithComponent(logger.ComponentCipher)

	name := findFunctionName(script)
	if name == "" {
		return Operations{}, NewError(ErrCodeFunctionNotFound, "no decipher function pattern matched", map[string]any{
			"patterns": len(FunctionPatterns),
		})
	}
	params, body, ok := extractDefinition(script, name)
	if !ok {
		return Operations{}, NewError(ErrCodeFunctionBody, "decipher function body not found", map[string]any{
			"name": name,
		})
	}
	ops := Operations{
		FunctionName:   name,
		Params:         params,
		Body:           body,
		FunctionSource: "function " + name + "(" + params + ") {" + body + "}",
	}

	helper := findHelperName(body)
	if helper == "" {
		log.Debug("Decipher function calls no helper object", map[string]interface{}{"name": name})
		return ops, nil
	}
	ops.HelperName = helper
	if src, ok := extractHelper(script, helper); ok {
		ops.HelperSource = src
	} else {
		log.Warn("Helper object definition not found", map[string]interface{}{
			"name":   name,
			"helper": helper,
		})
	}
	log.Debug("Located decipher function", map[string]interface{}{
		"name":   name,
		"helper": helper,
	})
	return ops, nil
}

func findFunctionName(script string) string {
	for _, re := range FunctionPatterns {
		if m := re.FindStringSubmatch(script); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

func findHelperName(body string) string {
	for _, m := range HelperCallPattern.FindAllStringSubmatch(body, -1) {
		if !builtinObjects[m[1]] {
			return m[1]
		}
	}
	return ""
}

func extractDefinition(script, name string) (params, body string, ok bool) {
	for _, tmpl := range definitionTemplates {
		re := regexp.MustCompile(fmt.Sprintf(tmpl, regexp.QuoteMeta(name)))
		loc := re.FindStringSubmatchIndex(script)
		if loc == nil {
			continue
		}
		open := loc[1] - 1
		end, found := closingBrace(script, open)
		if !found {
			continue
		}
		return strings.TrimSpace(script[loc[2]:loc[3]]), script[open+1 : end], true
	}
	return "", "", false
}

func extractHelper(script, name string) (string, bool) {
	for _, tmpl := range helperTemplates {
		re := regexp.MustCompile(fmt.Sprintf(tmpl, regexp.QuoteMeta(name)))
		loc := re.FindStringIndex(script)
		if loc == nil {
			continue
		}
		open := loc[1] - 1
		end, found := closingBrace(script, open)
		if !found {
			continue
		}
		return "var " + name + " = {" + script[open+1:end] + "};", true
	}
	return "", false
}

// closingBrace returns the index of the brace matching the one at open.
// Quoted strings are skipped so braces inside literals do not count.
func closingBrace(s string, open int) (int, bool) {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
