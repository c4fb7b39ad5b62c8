package generation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

const systemPrompt = "You are an expert resume writer for blue-collar professionals."

const resumeTemplate = `A user has provided this info in {{lang}}:

{{answers}}

Your task:
1.  Create a professional, ATS-friendly resume.
2.  The resume MUST be in the user's language ({{lang}}).
3.  Format the output as clean Markdown.
4.  Start with a strong "Professional Summary" (2-3 sentences).
5.  Emphasize "Skills" and "Experience" over "Education".
6.  Make it look clean, professional, and ready to be used.`

// BuildPrompt renders the resume instructions for the given answers and
// language code. Answers are listed in key order so identical input always
// produces the identical prompt.
func BuildPrompt(fields map[string]any, lang string) (string, error) {
	return render(resumeTemplate, map[string]string{
		"lang":    lang,
		"answers": formatAnswers(fields),
	})
}

func formatAnswers(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("- %s: %s", labelFor(k), formatValue(fields[k]))
	}
	return strings.Join(lines, "\n")
}

// labelFor turns "years_experience" into "Years experience".
func labelFor(key string) string {
	label := strings.ToLower(strings.ReplaceAll(key, "_", " "))
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// render replaces {{name}} placeholders and fails on any it cannot fill.
func render(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[2 : len(match)-2]
		if val, ok := vars[key]; ok {
			return val
		}
		missing = append(missing, key)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
