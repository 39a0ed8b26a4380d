package state

import (
	"fmt"
	"math/rand"
)

// ContentSource fills in size and text for documents registered without uploaded bytes.
// It stands in for a real file-storage integration.
type ContentSource interface {
	Placeholder(name string, version int) (size, content string)
}

// PlaceholderContent produces the demo size and text shown for metadata-only uploads.
type PlaceholderContent struct{}

func (PlaceholderContent) Placeholder(name string, version int) (string, string) {
	size := fmt.Sprintf("%.1f MB", rand.Float64()*5)
	content := fmt.Sprintf("This is the content for v%d of the uploaded document: %s.", version, name)
	return size, content
}
