package marq

import (
	"strconv"
	"strings"
)

// Token is a lexeme with its source span and literal value.
type Token struct {
	Kind  TokenKind
	Range Range
	// Value is the literal payload: text content, marker lexeme, code source.
	Value string
	// Count is the repetition count of marker runs (heading level, toggle
	// width, quote depth), the indent depth, or the newline count.
	Count    int
	ID       string
	Checked  bool
	Resource *Resource
	Aligns   []Align
}

// TokenKind classifies a token.
type TokenKind uint8

const (
	TokenIndent TokenKind = iota
	TokenNewline
	TokenSpace
	TokenText
	TokenLineBreak

	// code
	TokenCodeFence
	TokenCodeLang
	TokenCodeSource
	TokenCodeInline

	// block markers
	TokenHeading
	TokenSubtitle
	TokenComment
	TokenBullet
	TokenNumber
	TokenCheckbox
	TokenQuoteMarker
	TokenTerm
	TokenDesc
	TokenAdmonition
	TokenDinkus
	TokenPageBreak
	TokenReference
	TokenInclude

	// inline
	TokenToggle
	TokenPunct
	TokenQuoteOpen
	TokenQuoteClose
	TokenLinkOpen
	TokenViewOpen
	TokenFootnoteOpen
	TokenBracketClose
	TokenResource
	TokenInTextRef
	TokenEmoji
	TokenDateTime
	TokenAccountTag
	TokenHashTag

	// tables
	TokenRowOpen
	TokenCellSep
	TokenRowClose
	TokenRowSep

	tokenKindCount
)

var tokenNames = [...]string{
	TokenIndent:       "Indent",
	TokenNewline:      "Newline",
	TokenSpace:        "Space",
	TokenText:         "Text",
	TokenLineBreak:    "LineBreak",
	TokenCodeFence:    "CodeFence",
	TokenCodeLang:     "CodeLang",
	TokenCodeSource:   "CodeSource",
	TokenCodeInline:   "CodeInline",
	TokenHeading:      "Heading",
	TokenSubtitle:     "Subtitle",
	TokenComment:      "Comment",
	TokenBullet:       "Bullet",
	TokenNumber:       "Number",
	TokenCheckbox:     "Checkbox",
	TokenQuoteMarker:  "QuoteMarker",
	TokenTerm:         "Term",
	TokenDesc:         "Desc",
	TokenAdmonition:   "Admonition",
	TokenDinkus:       "Dinkus",
	TokenPageBreak:    "PageBreak",
	TokenReference:    "Reference",
	TokenInclude:      "Include",
	TokenToggle:       "Toggle",
	TokenPunct:        "Punct",
	TokenQuoteOpen:    "QuoteOpen",
	TokenQuoteClose:   "QuoteClose",
	TokenLinkOpen:     "LinkOpen",
	TokenViewOpen:     "ViewOpen",
	TokenFootnoteOpen: "FootnoteOpen",
	TokenBracketClose: "BracketClose",
	TokenResource:     "Resource",
	TokenInTextRef:    "InTextRef",
	TokenEmoji:        "Emoji",
	TokenDateTime:     "DateTime",
	TokenAccountTag:   "AccountTag",
	TokenHashTag:      "HashTag",
	TokenRowOpen:      "RowOpen",
	TokenCellSep:      "CellSep",
	TokenRowClose:     "RowClose",
	TokenRowSep:       "RowSep",
}

func (k TokenKind) String() string {
	if k < tokenKindCount {
		return tokenNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Align is a table column alignment.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "none"
	}
}

// Punct is a typographic punctuation subtype.
type Punct uint8

const (
	PunctHyphen Punct = iota
	PunctEnDash
	PunctEmDash
	PunctEllipsis
	PunctApostrophe
	PunctLeftQuote
	PunctRightQuote
	PunctLeftSingleQuote
	PunctRightSingleQuote
)

var punctNames = [...]string{
	PunctHyphen:           "hyphen",
	PunctEnDash:           "en-dash",
	PunctEmDash:           "em-dash",
	PunctEllipsis:         "ellipsis",
	PunctApostrophe:       "apostrophe",
	PunctLeftQuote:        "left-quote",
	PunctRightQuote:       "right-quote",
	PunctLeftSingleQuote:  "left-single-quote",
	PunctRightSingleQuote: "right-single-quote",
}

func (p Punct) String() string {
	if int(p) < len(punctNames) {
		return punctNames[p]
	}
	return "Punct(" + strconv.Itoa(int(p)) + ")"
}

// SectionSeparator splits a resource reference into its path and the ordered
// section anchors inside it.
const SectionSeparator = '>'

// Resource is a link or include target: a base path plus section anchors.
type Resource struct {
	Path     string
	Sections []string
}

// NewResource splits raw on SectionSeparator. Surrounding space is trimmed and
// empty anchors are dropped.
func NewResource(raw string) *Resource {
	parts := strings.Split(raw, string(SectionSeparator))
	res := &Resource{Path: strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		res.Sections = append(res.Sections, part)
	}
	return res
}

func (r *Resource) String() string {
	if r == nil {
		return ""
	}
	if len(r.Sections) == 0 {
		return r.Path
	}
	return r.Path + string(SectionSeparator) + strings.Join(r.Sections, string(SectionSeparator))
}
