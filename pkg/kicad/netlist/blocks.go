package netlist

import (
	"bufio"
	"io"
	"strings"
)

// Section positions inside an export document. Binding is positional: the
// splitter never looks at the section tags.
const (
	SectionDesign = iota
	SectionComponents
	SectionLibParts
	SectionLibraries
	SectionNets

	sectionCount
)

var sectionNames = [sectionCount]string{"design", "components", "libparts", "libraries", "nets"}

// SectionName returns the expected tag of the section at position i.
func SectionName(i int) string {
	if i < 0 || i >= sectionCount {
		return ""
	}
	return sectionNames[i]
}

// Block is a line range of the source document together with its text.
// Line numbers are 1-based; the export header is line 1.
type Block struct {
	StartLine int
	EndLine   int
	Text      string
}

// Sections holds the five top-level blocks of an export document.
type Sections struct {
	Design     Block
	Components Block
	LibParts   Block
	Libraries  Block
	Nets       Block
}

// Blocks returns the sections in document order.
func (s *Sections) Blocks() []Block {
	return []Block{s.Design, s.Components, s.LibParts, s.Libraries, s.Nets}
}

// SplitBlocks reads r line by line and groups lines into blocks. The first
// line (the export header) is skipped. A block starts at the next non-blank
// line and ends at the line where the running open/close count drops to zero
// or below. Lines holding nothing but close markers after the last block
// close the export header and are ignored.
func SplitBlocks(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		blocks []Block
		lines  []string
		depth  int
		start  int
		lineNo int
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if lineNo == 1 {
			continue
		}

		if lines == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if isCloser(line) {
				continue
			}
			start = lineNo
		}

		lines = append(lines, line)
		depth += CountMarkers(line)
		if depth <= 0 {
			blocks = append(blocks, Block{
				StartLine: start,
				EndLine:   lineNo,
				Text:      strings.Join(lines, "\n"),
			})
			lines = nil
			depth = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ioError(err, "failed to read netlist")
	}

	if lines != nil {
		return nil, NewFormatError(CodeUnbalanced, "",
			"block starting at line %d is never closed (%d open markers at end of input)", start, depth)
	}

	return blocks, nil
}

// SplitSections splits r into blocks and binds them to the five sections by
// position. Any count other than five is fatal.
func SplitSections(r io.Reader) (*Sections, error) {
	blocks, err := SplitBlocks(r)
	if err != nil {
		return nil, err
	}
	if len(blocks) != sectionCount {
		return nil, NewFormatError(CodeSectionCount, "",
			"expected %d top-level sections (%s), found %d",
			sectionCount, strings.Join(sectionNames[:], ", "), len(blocks))
	}

	return &Sections{
		Design:     blocks[SectionDesign],
		Components: blocks[SectionComponents],
		LibParts:   blocks[SectionLibParts],
		Libraries:  blocks[SectionLibraries],
		Nets:       blocks[SectionNets],
	}, nil
}

// isCloser reports whether line holds only close markers and whitespace.
func isCloser(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && strings.Trim(trimmed, ")") == ""
}
