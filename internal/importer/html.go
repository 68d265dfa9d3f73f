package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/netmark/internal/model"
)

// Attributes netmark adds to exported anchors. Browsers ignore them.
const (
	AttrType  = "netmark_type"
	AttrPorts = "ports"
)

// ParseHTML parses a Netscape bookmark file. Nested folders are flattened:
// each bookmark keeps the name of its innermost folder, or "" at the top
// level. Anchors without an href are skipped.
func ParseHTML(r io.Reader) ([]model.ImportedBookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var bookmarks []model.ImportedBookmark

	// Track current folder stack for hierarchy
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL

	var parse func(*html.Node) error
	parse = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				pendingFolder = getTextContent(n)
				return nil // Don't recurse into H3

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					return nil
				}

				name := getTextContent(n)
				if name == "" {
					name = href // fallback to the value as name
				}

				folder := ""
				if len(folderStack) > 0 {
					folder = folderStack[len(folderStack)-1]
				}

				var createdAt time.Time
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = time.Unix(ts, 0)
					}
				}

				ports, err := ParsePorts(getAttr(n, AttrPorts))
				if err != nil {
					return fmt.Errorf("bookmark %q: %w", name, err)
				}

				bookmarks = append(bookmarks, model.ImportedBookmark{
					Folder:    folder,
					Type:      model.BookmarkType(strings.ToLower(getAttr(n, AttrType))),
					Name:      name,
					Value:     href,
					Ports:     ports,
					CreatedAt: createdAt,
				})
				return nil // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if err := parse(c); err != nil {
						return err
					}
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return nil // children handled
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := parse(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := parse(doc); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// ParsePorts parses a comma separated "PROTO/PORT" list such as
// "TCP/80,UDP/53". An empty string yields no ports.
func ParsePorts(s string) ([]model.Port, error) {
	ports := []model.Port{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		port, err := ParsePort(field)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

// ParsePort parses one "PROTO/PORT" pair. The protocol is upper-cased.
func ParsePort(s string) (model.Port, error) {
	proto, num, ok := strings.Cut(s, "/")
	proto = strings.ToUpper(strings.TrimSpace(proto))
	num = strings.TrimSpace(num)
	if !ok || proto == "" || num == "" {
		return model.Port{}, fmt.Errorf("invalid port %q, want PROTO/PORT", s)
	}
	if n, err := strconv.Atoi(num); err != nil || n < 1 || n > 65535 {
		return model.Port{}, fmt.Errorf("invalid port number %q", num)
	}
	return model.Port{Proto: proto, Port: num}, nil
}

// FormatPorts is the inverse of ParsePorts.
func FormatPorts(ports []model.Port) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = p.Proto + "/" + p.Port
	}
	return strings.Join(parts, ",")
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
