package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/riostats/internal/doctree"
)

// TextParser handles plain-text page dumps. Each blank-line separated
// paragraph becomes a container and each line a text run inside it, so a
// label line and its value line end up as siblings.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	b := doctree.NewBuilder().SetTitle(strings.TrimSuffix(filename, ".txt"))
	for _, para := range paragraphs {
		b.Open("p", doctree.RoleContainer)
		for _, line := range para {
			b.Leaf("line", doctree.RoleTextRun, line)
		}
		b.Close()
	}
	return b.Tree(), nil
}
