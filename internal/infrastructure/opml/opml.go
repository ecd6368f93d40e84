// Package opml parses OPML subscription lists into feed lists.
package opml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/tesso57/feedlist/internal/domain/subscription"
)

// ErrMalformedDocument is returned when the input is not XML or has no opml element.
var ErrMalformedDocument = errors.New("malformed opml document")

var (
	rootExpr  = xpath.MustCompile("//opml")
	titleExpr = xpath.MustCompile("//head/title")
	// type and isComment are matched by substring, not equality.
	feedExpr = xpath.MustCompile("//outline[contains(@type, 'rss') and not(contains(@isComment, 'true'))]")
)

// Parse parses an OPML document.
func Parse(data []byte) (*subscription.FeedList, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses an OPML document read from r.
func ParseReader(r io.Reader) (*subscription.FeedList, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := checkTopLevel(doc); err != nil {
		return nil, err
	}
	root := xmlquery.QuerySelector(doc, rootExpr)
	if root == nil {
		return nil, fmt.Errorf("%w: no opml element", ErrMalformedDocument)
	}

	list := &subscription.FeedList{Entries: []subscription.FeedEntry{}}
	if title := xmlquery.QuerySelector(root, titleExpr); title != nil {
		text := title.InnerText()
		list.Title = &text
	}

	for _, node := range xmlquery.QuerySelectorAll(root, feedExpr) {
		list.Entries = append(list.Entries, subscription.FeedEntry{
			Label:    attr(node, "text"),
			FeedURL:  attr(node, "xmlUrl"),
			Category: category(node),
		})
	}
	return list, nil
}

// checkTopLevel rejects what the lenient tree builder lets through: a second
// root element or character data outside the root. Text ahead of a document
// without a prolog is attached as a sibling of doc, not a child.
func checkTopLevel(doc *xmlquery.Node) error {
	elements := 0
	for _, first := range []*xmlquery.Node{doc.FirstChild, doc.NextSibling} {
		for n := first; n != nil; n = n.NextSibling {
			switch n.Type {
			case xmlquery.ElementNode:
				elements++
				if elements > 1 {
					return fmt.Errorf("%w: more than one root element", ErrMalformedDocument)
				}
			case xmlquery.TextNode, xmlquery.CharDataNode:
				if strings.TrimSpace(n.Data) != "" {
					return fmt.Errorf("%w: text outside the root element", ErrMalformedDocument)
				}
			}
		}
	}
	return nil
}

// attr returns nil when the attribute is missing.
func attr(n *xmlquery.Node, name string) *string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			value := a.Value
			return &value
		}
	}
	return nil
}

func category(n *xmlquery.Node) *string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == xmlquery.ElementNode && p.Data == "outline" {
			return attr(p, "text")
		}
	}
	return nil
}
