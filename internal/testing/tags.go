package testing

import (
	"strings"
	"testing"

	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/xtags"
)

// DXF joins group code and value lines into DXF tag text
func DXF(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// ParseBlock parses DXF tag text of a single entity into a classified
// block, failing the test on errors
func ParseBlock(t *testing.T, text string) *xtags.Block {
	t.Helper()
	block, err := xtags.Parse(text)
	if err != nil {
		t.Fatalf("Failed to parse block: %v", err)
	}
	return block
}

// ParseBlocks parses DXF tag text of several entities into classified
// blocks, one per structure tag (0, DXFTYPE)
func ParseBlocks(t *testing.T, text string) []*xtags.Block {
	t.Helper()
	tags, err := tag.Parse(text)
	if err != nil {
		t.Fatalf("Failed to parse tags: %v", err)
	}
	var blocks []*xtags.Block
	for _, group := range tags.GroupBy(0) {
		block, err := xtags.Classify(group)
		if err != nil {
			t.Fatalf("Failed to classify %s: %v", group.DXFType(), err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}
