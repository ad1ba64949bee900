package marq

import (
	"reflect"
	"strconv"
	"strings"
)

// Kind is the variant tag of a Node.
type Kind uint8

const (
	KindDocument Kind = iota
	KindComment
	KindText
	KindStyle
	KindParagraph
	KindSpace
	KindLineBreak
	KindPageBreak
	KindDinkus
	KindSection
	KindSubtitle
	KindContent
	KindQuote
	KindList
	KindItem
	KindCheckItem
	KindDefinitionTerm
	KindDefinitionDesc
	KindTable
	KindRow
	KindCell
	KindCode
	KindCodeBlock
	KindLink
	KindView
	KindFootnote
	KindInTextRef
	KindReference
	KindPunctuation
	KindEmoji
	KindDateTime
	KindAdmonition
	KindAccountTag
	KindHashTag

	kindCount
)

var kindNames = [...]string{
	KindDocument:       "Document",
	KindComment:        "Comment",
	KindText:           "Text",
	KindStyle:          "Style",
	KindParagraph:      "Paragraph",
	KindSpace:          "Space",
	KindLineBreak:      "LineBreak",
	KindPageBreak:      "PageBreak",
	KindDinkus:         "Dinkus",
	KindSection:        "Section",
	KindSubtitle:       "Subtitle",
	KindContent:        "Content",
	KindQuote:          "Quote",
	KindList:           "List",
	KindItem:           "Item",
	KindCheckItem:      "CheckItem",
	KindDefinitionTerm: "DefinitionTerm",
	KindDefinitionDesc: "DefinitionDesc",
	KindTable:          "Table",
	KindRow:            "Row",
	KindCell:           "Cell",
	KindCode:           "Code",
	KindCodeBlock:      "CodeBlock",
	KindLink:           "Link",
	KindView:           "View",
	KindFootnote:       "Footnote",
	KindInTextRef:      "InTextRef",
	KindReference:      "Reference",
	KindPunctuation:    "Punctuation",
	KindEmoji:          "Emoji",
	KindDateTime:       "DateTime",
	KindAdmonition:     "Admonition",
	KindAccountTag:     "AccountTag",
	KindHashTag:        "HashTag",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is an element of the document tree. A parent owns its children
// exclusively; there are no back references.
type Node struct {
	Kind     Kind
	Range    Range
	Children []*Node
	Attrs    []Attr
	Data     Payload
}

// Attr is a key/value annotation on a node.
type Attr struct {
	Key   string
	Value string
}

// Payload is the variant-specific data of a node. It is implemented only by
// the *Data types of this package.
type Payload interface {
	payload()
}

// NewNode returns a node of kind k with payload data.
func NewNode(k Kind, r Range, data Payload) *Node {
	return &Node{Kind: k, Range: r, Data: data}
}

// Append adds c as the last child of n.
func (n *Node) Append(c *Node) {
	n.Children = append(n.Children, c)
}

// Attr returns the value stored under key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets key to value, replacing an existing entry.
func (n *Node) SetAttr(key, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// Text returns the plain text of the subtree: text, code and punctuation
// literals concatenated in document order.
func (n *Node) Text() string {
	var b strings.Builder
	Visit(n, func(c *Node) {
		switch d := c.Data.(type) {
		case *TextData:
			if c.Kind == KindText {
				b.WriteString(d.Value)
			}
		case *PunctData:
			b.WriteString(d.Literal)
		case *CodeData:
			if c.Kind == KindCode {
				b.WriteString(d.Source)
			}
		case *EmojiData:
			b.WriteString(":" + d.Code + ":")
		case *TagData:
			if c.Kind == KindAccountTag {
				b.WriteString("@" + d.Name)
			} else {
				b.WriteString("#" + d.Name)
			}
		case *DateTimeData:
			b.WriteString(d.String())
		}
	})
	return b.String()
}

// DocumentData is the payload of KindDocument.
type DocumentData struct {
	Path string
}

// TextData is the payload of KindText and KindComment.
type TextData struct {
	Value string
}

// Style is an inline formatting style.
type Style uint8

const (
	StyleBold Style = iota
	StyleItalic
	StyleBoldItalic
	StyleUnderline
	StyleMonospace
	StyleStrike
)

var styleNames = [...]string{
	StyleBold:       "bold",
	StyleItalic:     "italic",
	StyleBoldItalic: "bold-italic",
	StyleUnderline:  "underline",
	StyleMonospace:  "monospace",
	StyleStrike:     "strike",
}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "Style(" + strconv.Itoa(int(s)) + ")"
}

// toggleStyle maps a toggle symbol and its run length to a style.
func toggleStyle(symbol byte, n int) Style {
	switch symbol {
	case '*':
		switch {
		case n == 1:
			return StyleItalic
		case n == 2:
			return StyleBold
		default:
			return StyleBoldItalic
		}
	case '_':
		if n == 1 {
			return StyleItalic
		}
		return StyleUnderline
	case '~':
		return StyleStrike
	default:
		return StyleMonospace
	}
}

// StyleData is the payload of KindStyle.
type StyleData struct {
	Style Style
}

// SpaceData is the payload of KindSpace. Size counts the blank lines beyond
// the first.
type SpaceData struct {
	Size int
}

// SectionData is the payload of KindSection.
type SectionData struct {
	Level int
	ID    string
}

// QuoteData is the payload of KindQuote. Inline quotes are quoted runs
// within a paragraph, block quotes come from '>' markers.
type QuoteData struct {
	Inline bool
}

// ListType distinguishes list flavours.
type ListType uint8

const (
	ListBullet ListType = iota
	ListNumbered
	ListCheck
	ListDefinition
)

var listTypeNames = [...]string{
	ListBullet:     "bullet",
	ListNumbered:   "numbered",
	ListCheck:      "check",
	ListDefinition: "definition",
}

func (t ListType) String() string {
	if int(t) < len(listTypeNames) {
		return listTypeNames[t]
	}
	return "ListType(" + strconv.Itoa(int(t)) + ")"
}

// ListData is the payload of KindList. Start is the first number of a
// numbered list.
type ListData struct {
	Type  ListType
	Start int
}

// ItemData is the payload of KindItem and KindCheckItem.
type ItemData struct {
	Number  int
	Checked bool
	Marker  string
}

// TableData is the payload of KindTable. Boundaries are row indexes of the
// separator rows, -1 when absent.
type TableData struct {
	Aligns         []Align
	HeaderBoundary int
	FooterBoundary int
	Columns        int
}

// IsHeader reports whether row i precedes the header separator.
func (t *TableData) IsHeader(i int) bool {
	return t.HeaderBoundary >= 0 && i < t.HeaderBoundary
}

// IsFooter reports whether row i follows the footer separator.
func (t *TableData) IsFooter(i int) bool {
	return t.FooterBoundary >= 0 && i > t.FooterBoundary
}

// RowData is the payload of KindRow.
type RowData struct {
	Separator bool
}

// CodeData is the payload of KindCode and KindCodeBlock.
type CodeData struct {
	Lang   string
	Source string
}

// LinkData is the payload of KindLink and KindView.
type LinkData struct {
	Resource string
	Sections []string
	Label    string
}

// RefData is the payload of KindInTextRef and KindReference.
type RefData struct {
	Key      string
	Resource string
	Sections []string
}

// PunctData is the payload of KindPunctuation.
type PunctData struct {
	Punct   Punct
	Literal string
}

// EmojiData is the payload of KindEmoji.
type EmojiData struct {
	Code string
}

// AdmonitionData is the payload of KindAdmonition.
type AdmonitionData struct {
	Type string
}

// TagData is the payload of KindAccountTag and KindHashTag.
type TagData struct {
	Name string
}

func (*DocumentData) payload()   {}
func (*TextData) payload()       {}
func (*StyleData) payload()      {}
func (*SpaceData) payload()      {}
func (*SectionData) payload()    {}
func (*QuoteData) payload()      {}
func (*ListData) payload()       {}
func (*ItemData) payload()       {}
func (*TableData) payload()      {}
func (*RowData) payload()        {}
func (*CodeData) payload()       {}
func (*LinkData) payload()       {}
func (*RefData) payload()        {}
func (*PunctData) payload()      {}
func (*EmojiData) payload()      {}
func (*AdmonitionData) payload() {}
func (*TagData) payload()        {}

// Equal reports whether a and b are structurally identical: same kinds,
// nesting, payload values and attributes. Ranges are not compared.
func Equal(a, b *Node) bool {
	type pair struct{ a, b *Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Kind != p.b.Kind || len(p.a.Children) != len(p.b.Children) {
			return false
		}
		if !attrsEqual(p.a.Attrs, p.b.Attrs) || !reflect.DeepEqual(p.a.Data, p.b.Data) {
			return false
		}
		for i := range p.a.Children {
			stack = append(stack, pair{p.a.Children[i], p.b.Children[i]})
		}
	}
	return true
}

func attrsEqual(a, b []Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
