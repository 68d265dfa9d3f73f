package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/netmark/internal/importer"
	"github.com/nikbrunner/netmark/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/netmark-<org>-YYYY-MM-DD.html
func DefaultExportPath(orgName string, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("netmark-%s-%s.html", slug(orgName), now.Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports one organization to Netscape bookmark HTML format.
// Folders are written first, then root bookmarks. Trashed bookmarks are
// left out. IP bookmarks carry NETMARK_TYPE and PORTS attributes so a
// re-import restores them.
func ExportHTML(state *model.AppState, orgID string) string {
	var b strings.Builder

	title := "Bookmarks"
	if org := state.GetOrganizationByID(orgID); org != nil {
		title = org.Name
	}

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	fmt.Fprintf(&b, "<TITLE>%s</TITLE>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<H1>%s</H1>\n", html.EscapeString(title))
	b.WriteString("<DL><p>\n")

	for _, folder := range state.GetFoldersInOrg(orgID) {
		fmt.Fprintf(&b, "    <DT><H3>%s</H3>\n", html.EscapeString(folder.Name))
		b.WriteString("    <DL><p>\n")
		writeBookmarks(&b, state.GetBookmarksInFolder(orgID, folder.ID), 2)
		b.WriteString("    </DL><p>\n")
	}

	writeBookmarks(&b, state.GetBookmarksInFolder(orgID, model.RootFolderID), 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmarks(b *strings.Builder, bookmarks []model.Bookmark, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, bookmark := range bookmarks {
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"", prefix, html.EscapeString(bookmark.Value))
		if !bookmark.CreatedAt.IsZero() {
			fmt.Fprintf(b, " ADD_DATE=\"%d\"", bookmark.CreatedAt.Unix())
		}
		if bookmark.Type == model.TypeIP {
			fmt.Fprintf(b, " %s=\"%s\"", strings.ToUpper(importer.AttrType), model.TypeIP)
		}
		if len(bookmark.Ports) > 0 {
			fmt.Fprintf(b, " %s=\"%s\"", strings.ToUpper(importer.AttrPorts), html.EscapeString(importer.FormatPorts(bookmark.Ports)))
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bookmark.Name))
	}
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "bookmarks"
	}
	return out
}
