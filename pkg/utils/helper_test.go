package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseNumberPadsSequence(t *testing.T) {
	assert.Equal(t, "ALP-2025-001", CaseNumber(2025, 1))
	assert.Equal(t, "ALP-2025-042", CaseNumber(2025, 42))
	assert.Equal(t, "ALP-2026-1234", CaseNumber(2026, 1234))
}

func TestClientEmailCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", ClientEmail("Jane Doe"))
	assert.Equal(t, "mary.ann.smith@example.com", ClientEmail("  Mary  Ann\tSmith "))
}

func TestNewIDIsUniqueAndPrefixed(t *testing.T) {
	a, b := NewID("log"), NewID("log")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "log-"))
	assert.Len(t, NewID(""), 36)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "1.0 MB", FormatSize(1024*1024))
	assert.Equal(t, "0.0 MB", FormatSize(10))
}

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	p := Paginate(all, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, p.Items)
	assert.Equal(t, int64(7), p.Total)
	assert.Equal(t, 3, p.Pages)

	last := Paginate(all, 3, 3)
	assert.Equal(t, []int{7}, last.Items)

	past := Paginate(all, 9, 3)
	assert.NotNil(t, past.Items)
	assert.Empty(t, past.Items)

	empty := Paginate([]int(nil), 1, 10)
	assert.Equal(t, 0, empty.Pages)
	assert.NotNil(t, empty.Items)
}
