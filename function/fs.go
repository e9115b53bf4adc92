package function

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/subframe7536/yaak/template"
)

// fileEncodings maps each supported encoding to its decoder.
var fileEncodings = map[string]func([]byte) string{
	"utf8":      func(b []byte) string { return string(b) },
	"ascii":     ascii,
	"latin1":    latin1,
	"utf16le":   utf16le,
	"base64":    base64.StdEncoding.EncodeToString,
	"base64url": base64.URLEncoding.EncodeToString,
	"hex":       hex.EncodeToString,
}

// ReadFile reads a file and returns its contents in the chosen encoding.
// An empty path renders as "".
func ReadFile() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "fs.readFile",
			Description: "Read the contents of a file",
			Args: []template.ArgDescriptor{
				{Name: "path", Label: "File"},
				{
					Name:         "encoding",
					Label:        "Encoding",
					DefaultValue: "utf8",
					Optional:     true,
					Description:  "How the file's bytes are decoded into text: utf8, ascii, latin1, utf16le, base64, base64url or hex",
				},
			},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			path := call.Arg("path")
			if path == "" {
				return "", nil
			}

			name := strings.ToLower(strings.ReplaceAll(call.Arg("encoding"), "-", ""))
			if name == "" {
				name = "utf8"
			}

			decode, ok := fileEncodings[name]
			if !ok {
				return "", ErrInvalidArgument.Wrap(fmt.Errorf("unsupported encoding %q", call.Arg("encoding")))
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return "", template.ErrFunctionFailed.Wrap(err)
			}

			return decode(data), nil
		},
	}
}

func ascii(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c & 0x7f
	}

	return string(out)
}

func latin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}

	return string(r)
}

func utf16le(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}

	return string(utf16.Decode(u))
}
