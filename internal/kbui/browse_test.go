package kbui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowseItem_FilterValue_IncludesTitleCategoriesAndTags(t *testing.T) {
	it := BrowseItem{
		Title:      "Go generics",
		Categories: []string{"programming"},
		Tags:       []string{"go", "types"},
	}

	fv := it.FilterValue()
	assert.Contains(t, fv, "Go generics")
	assert.Contains(t, fv, "programming")
	assert.Contains(t, fv, "go")
	assert.Contains(t, fv, "types")
}

func TestRenderItemDetail_IncludesTitleAndContent(t *testing.T) {
	it := BrowseItem{
		Title:      "Notes",
		SourcePath: "notes.md",
		Categories: []string{"personal"},
		Tags:       []string{"journal"},
		Content:    "some content here",
	}

	out := renderItemDetail(it, NoColorStyles())
	assert.True(t, strings.Contains(out, "Notes"))
	assert.True(t, strings.Contains(out, "notes.md"))
	assert.True(t, strings.Contains(out, "categories: personal"))
	assert.True(t, strings.Contains(out, "tags: journal"))
	assert.True(t, strings.Contains(out, "some content here"))
}

func TestNewBrowseModel_StartsInListView(t *testing.T) {
	m := NewBrowseModel([]BrowseItem{{Title: "a"}, {Title: "b"}}, true)
	assert.Equal(t, viewList, m.view)
}
