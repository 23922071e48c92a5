package source

import "strings"

// placeholder values spreadsheets commonly leave in empty URL cells.
var emptyURLValues = map[string]struct{}{
	"nan": {}, "none": {}, "null": {}, "0": {}, "false": {},
}

// NormalizeImageURL turns share links into directly embeddable image URLs.
// Google Drive file links become uc?export=view links and GitHub blob
// links become raw.githubusercontent.com links. Placeholder values return
// the empty string.
func NormalizeImageURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if _, placeholder := emptyURLValues[strings.ToLower(url)]; placeholder {
		return ""
	}

	if i := strings.Index(url, "drive.google.com/file/d/"); i >= 0 {
		id := url[i+len("drive.google.com/file/d/"):]
		if j := strings.Index(id, "/"); j >= 0 {
			id = id[:j]
		}
		return "https://drive.google.com/uc?export=view&id=" + id
	}

	if i := strings.Index(url, "github.com/"); i >= 0 && strings.Contains(url, "/blob/") {
		rest := url[i+len("github.com/"):]
		parts := strings.SplitN(rest, "/blob/", 2)
		if len(parts) == 2 {
			raw := "https://raw.githubusercontent.com/" + parts[0] + "/" + parts[1]
			return strings.ReplaceAll(raw, "?raw=true", "")
		}
	}

	return url
}
