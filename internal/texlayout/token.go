package texlayout

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokChar    tokenKind = iota // a single character
	tokCommand                  // \name or \c
	tokOpen                     // {
	tokClose                    // }
	tokSup                      // ^
	tokSub                      // _
	tokAlign                    // &
	tokSpace                    // run of white space
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// tokenize splits TeX source into tokens. Comments run from an unescaped
// % to the end of the line.
func tokenize(src string) []token {
	var toks []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case r == '\\':
			j := i + 1
			for j < len(src) && isLetter(src[j]) {
				j++
			}
			if j == i+1 && j < len(src) {
				_, n := utf8.DecodeRuneInString(src[j:])
				j += n
			}
			toks = append(toks, token{kind: tokCommand, text: src[i+1 : j]})
			i = j
			continue
		case r == '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		case unicode.IsSpace(r):
			j := i
			for j < len(src) {
				r2, n := utf8.DecodeRuneInString(src[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += n
			}
			toks = append(toks, token{kind: tokSpace, text: " "})
			i = j
			continue
		case r == '{':
			toks = append(toks, token{kind: tokOpen, text: "{"})
		case r == '}':
			toks = append(toks, token{kind: tokClose, text: "}"})
		case r == '^':
			toks = append(toks, token{kind: tokSup, text: "^"})
		case r == '_':
			toks = append(toks, token{kind: tokSub, text: "_"})
		case r == '&':
			toks = append(toks, token{kind: tokAlign, text: "&"})
		default:
			toks = append(toks, token{kind: tokChar, text: src[i : i+size]})
		}
		i += size
	}
	return toks
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// source reassembles tokens into TeX source text.
func source(toks []token) string {
	var out []byte
	for i, t := range toks {
		switch t.kind {
		case tokCommand:
			out = append(out, '\\')
			out = append(out, t.text...)
			if len(t.text) > 0 && isLetter(t.text[0]) && i+1 < len(toks) &&
				toks[i+1].kind == tokChar && len(toks[i+1].text) > 0 && isLetter(toks[i+1].text[0]) {
				out = append(out, ' ')
			}
		default:
			out = append(out, t.text...)
		}
	}
	return string(out)
}
