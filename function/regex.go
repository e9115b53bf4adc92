package function

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/subframe7536/yaak/template"
)

var (
	inputArg = template.ArgDescriptor{
		Name:      "input",
		Label:     "Input Text",
		MultiLine: true,
	}
	regexArg = template.ArgDescriptor{
		Name:         "regex",
		Label:        "Regular Expression",
		Placeholder:  `\w+`,
		DefaultValue: ".*",
		Description:  "A regular expression. Use a capture group to reference parts of the match in the replacement.",
	}
)

// RegexMatch extracts the first named capture group of the first match, or
// else the first capture group, or else the whole match.
func RegexMatch() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "regex.match",
			Description: "Extract text using a regular expression",
			Args:        []template.ArgDescriptor{inputArg, regexArg},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			re, err := regexp.Compile(call.Arg("regex"))
			if err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			return firstGroup(re, call.Arg("input")), nil
		},
	}
}

func firstGroup(re *regexp.Regexp, input string) string {
	m := re.FindStringSubmatch(input)
	if m == nil {
		return ""
	}

	for i, name := range re.SubexpNames() {
		if name != "" {
			return m[i]
		}
	}

	if len(m) > 1 {
		return m[1]
	}

	return m[0]
}

// RegexReplace replaces matches of a regular expression. Flags are any of
// "g" (replace all matches), "i", "m" and "s". The replacement may refer to
// groups as $1 and to the whole match as $&.
func RegexReplace() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "regex.replace",
			Description: "Replace text using a regular expression",
			Args: []template.ArgDescriptor{
				inputArg,
				regexArg,
				{
					Name:        "replacement",
					Label:       "Replacement Text",
					Placeholder: "hello $1",
					Description: "Use $1, $2, ... to reference capture groups or $& to reference the entire match.",
				},
				{
					Name:         "flags",
					Label:        "Flags",
					Placeholder:  "g",
					DefaultValue: "g",
					Optional:     true,
					Description:  "g for global, i for case-insensitive, m for multiline, s to let . match newlines",
				},
			},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			pattern := call.Arg("regex")
			if pattern == "" {
				return "", nil
			}

			global, inline, err := regexFlags(call.Arg("flags"))
			if err != nil {
				return "", err
			}

			re, err := regexp.Compile(inline + pattern)
			if err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			input, repl := call.Arg("input"), expandTemplate(call.Arg("replacement"))

			if global {
				return re.ReplaceAllString(input, repl), nil
			}

			loc := re.FindStringSubmatchIndex(input)
			if loc == nil {
				return input, nil
			}

			dst := re.ExpandString(nil, repl, input, loc)

			return input[:loc[0]] + string(dst) + input[loc[1]:], nil
		},
	}
}

// regexFlags splits flags into the global switch and an inline flag group.
func regexFlags(flags string) (global bool, inline string, err error) {
	var set strings.Builder

	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			set.WriteRune(f)
		case 'u', 'y', 'd':
			// Accepted for compatibility; no effect.
		default:
			return false, "", ErrInvalidArgument.Wrap(fmt.Errorf("unknown regex flag %q", f))
		}
	}

	if set.Len() > 0 {
		inline = "(?" + set.String() + ")"
	}

	return global, inline, nil
}

// expandTemplate converts $1, $& and $$ references to the ${1} form used by
// [regexp.Regexp.Expand], so "$1x" keeps meaning group 1 followed by "x".
func expandTemplate(s string) string {
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 == len(s) {
			sb.WriteByte(s[i])

			continue
		}

		switch c := s[i+1]; {
		case c == '$':
			sb.WriteString("$$")
			i++

		case c == '&':
			sb.WriteString("${0}")
			i++

		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '9' {
				j++
			}

			sb.WriteString("${" + s[i+1:j] + "}")
			i = j - 1

		case c == '<':
			end := strings.IndexByte(s[i+2:], '>')
			if end < 0 {
				sb.WriteString("$$")

				continue
			}

			sb.WriteString("${" + s[i+2:i+2+end] + "}")
			i += 2 + end

		default:
			sb.WriteString("$$")
		}
	}

	return sb.String()
}
