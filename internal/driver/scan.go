package driver

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"quill/internal/source"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
	tokBad
)

// token is one lexical unit of a fixture's type or call expression text.
type token struct {
	kind tokKind
	text string
	pos  uint32
	end  uint32
}

func (t token) is(kind tokKind, text string) bool {
	return t.kind == kind && t.text == text
}

// scanner tokenizes the compact type/expression syntax embedded in fixture
// documents. Multi-character punctuation is limited to "=>" and "...".
type scanner struct {
	src  string
	off  int
	file source.FileID

	peeked []token
}

func newScanner(src string, file source.FileID) *scanner {
	return &scanner{src: src, file: file}
}

func (s *scanner) spanFrom(t token) source.Span {
	return source.Span{File: s.file, Start: t.pos, End: t.end}
}

func (s *scanner) peek() token {
	return s.peekAt(0)
}

func (s *scanner) peekAt(n int) token {
	for len(s.peeked) <= n {
		s.peeked = append(s.peeked, s.scan())
	}
	return s.peeked[n]
}

func (s *scanner) next() token {
	if len(s.peeked) > 0 {
		t := s.peeked[0]
		s.peeked = s.peeked[1:]
		return t
	}
	return s.scan()
}

func (s *scanner) scan() token {
	for s.off < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		if !unicode.IsSpace(r) {
			break
		}
		s.off += size
	}
	start := safecast.MustConvert[uint32](s.off)
	if s.off >= len(s.src) {
		return token{kind: tokEOF, pos: start, end: start}
	}

	r, size := utf8.DecodeRuneInString(s.src[s.off:])
	switch {
	case r == '_' || unicode.IsLetter(r):
		begin := s.off
		for s.off < len(s.src) {
			r, size = utf8.DecodeRuneInString(s.src[s.off:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			s.off += size
		}
		return token{kind: tokIdent, text: s.src[begin:s.off], pos: start, end: safecast.MustConvert[uint32](s.off)}
	case unicode.IsDigit(r):
		begin := s.off
		seenDot := false
		for s.off < len(s.src) {
			ch := s.src[s.off]
			if ch == '.' && !seenDot && s.off+1 < len(s.src) && s.src[s.off+1] >= '0' && s.src[s.off+1] <= '9' {
				seenDot = true
				s.off++
				continue
			}
			if ch < '0' || ch > '9' {
				break
			}
			s.off++
		}
		return token{kind: tokNumber, text: s.src[begin:s.off], pos: start, end: safecast.MustConvert[uint32](s.off)}
	case r == '"' || r == '\'':
		quote := byte(r)
		s.off++
		var sb strings.Builder
		for s.off < len(s.src) {
			ch := s.src[s.off]
			if ch == quote {
				s.off++
				return token{kind: tokString, text: sb.String(), pos: start, end: safecast.MustConvert[uint32](s.off)}
			}
			if ch == '\\' && s.off+1 < len(s.src) {
				s.off++
				ch = s.src[s.off]
			}
			sb.WriteByte(ch)
			s.off++
		}
		return token{kind: tokBad, text: sb.String(), pos: start, end: safecast.MustConvert[uint32](s.off)}
	}

	if strings.HasPrefix(s.src[s.off:], "=>") {
		s.off += 2
		return token{kind: tokPunct, text: "=>", pos: start, end: start + 2}
	}
	if strings.HasPrefix(s.src[s.off:], "...") {
		s.off += 3
		return token{kind: tokPunct, text: "...", pos: start, end: start + 3}
	}
	s.off += size
	return token{kind: tokPunct, text: string(r), pos: start, end: safecast.MustConvert[uint32](s.off)}
}
