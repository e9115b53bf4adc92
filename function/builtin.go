package function

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

// Builtins returns the built-in functions. secure is included only when
// cipher is non-nil and prompt.text only when prompter is non-nil.
func Builtins(cipher Cipher, prompter Prompter, logger log.Logger) []Function {
	fns := make([]Function, 0, 16)

	if cipher != nil {
		fns = append(fns, NewSecure(cipher))
	}

	fns = append(fns,
		Keychain{Log: logger},
		Timestamp(time.Now),
		DatetimeISO(time.Now),
		DatetimeCalculate(time.Now),
		RegexMatch(),
		RegexReplace(),
		UUIDv4(),
		UUIDv7(),
		JSONPath(),
		XMLPath(),
		NewExpr(),
		ReadFile(),
	)

	if prompter != nil {
		fns = append(fns, NewPrompt(prompter))
	}

	return fns
}

// Timestamp returns the current Unix time in milliseconds.
func Timestamp(now func() time.Time) Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "timestamp",
			Description: "Get the current timestamp in milliseconds",
		},
		Fn: func(context.Context, Call) (string, error) {
			return strconv.FormatInt(now().UnixMilli(), 10), nil
		},
	}
}

// isoLayout matches the millisecond UTC form of JavaScript's toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func iso(t time.Time) string { return t.UTC().Format(isoLayout) }

// DatetimeISO returns the current time as an ISO 8601 string in UTC.
func DatetimeISO(now func() time.Time) Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "datetime.iso",
			Description: "Get the current date in ISO format",
		},
		Fn: func(context.Context, Call) (string, error) {
			return iso(now()), nil
		},
	}
}

var calcOp = regexp.MustCompile(`^([+-]?)(\d+)([a-zA-Z]+)$`)

// DatetimeCalculate shifts a date by a comma-separated list of offsets
// such as "-5d, +2h, 3m" and returns the ISO 8601 result. The date may be
// Unix milliseconds or an RFC 3339 string and defaults to now.
func DatetimeCalculate(now func() time.Time) Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "datetime.calculate",
			Description: "Manipulate a datetime and return an ISO string",
			Args: []template.ArgDescriptor{
				{
					Name:        "date",
					Label:       "Date String",
					Description: "The date to manipulate, as a timestamp or ISO string",
					Placeholder: "Default: current date",
					Optional:    true,
				},
				{
					Name:        "calc",
					Label:       "Calculate Expression",
					Description: "Offsets separated by commas. Units: y, M, d, h, m, s",
					Placeholder: "-5d, +2h, 3m",
					Optional:    true,
				},
			},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			t, err := parseDate(call.Arg("date"), now)
			if err != nil {
				return "", err
			}

			for op := range strings.SplitSeq(call.Arg("calc"), ",") {
				if op = strings.TrimSpace(op); op == "" {
					continue
				}

				if t, err = applyOffset(t, op); err != nil {
					return "", err
				}
			}

			return iso(t), nil
		},
	}
}

func parseDate(s string, now func() time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now(), nil
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidArgument.Wrap(fmt.Errorf("unrecognized date %q", s))
}

func applyOffset(t time.Time, op string) (time.Time, error) {
	m := calcOp.FindStringSubmatch(op)
	if m == nil {
		// Unparseable offsets are ignored.
		return t, nil
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return t, ErrInvalidArgument.Wrap(err)
	}

	if m[1] == "-" {
		n = -n
	}

	switch m[3] {
	case "y":
		return t.AddDate(n, 0, 0), nil
	case "M":
		return t.AddDate(0, n, 0), nil
	case "d":
		return t.AddDate(0, 0, n), nil
	case "h":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "m":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "s":
		return t.Add(time.Duration(n) * time.Second), nil
	default:
		return t, ErrInvalidArgument.Wrap(fmt.Errorf("invalid unit %q", m[3]))
	}
}

// UUIDv4 returns a random UUID.
func UUIDv4() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "uuid.v4",
			Description: "Generate a random UUID",
		},
		Fn: func(context.Context, Call) (string, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}

			return id.String(), nil
		},
	}
}

// UUIDv7 returns a time-ordered UUID.
func UUIDv7() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "uuid.v7",
			Description: "Generate a time-ordered UUID",
		},
		Fn: func(context.Context, Call) (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}

			return id.String(), nil
		},
	}
}
