package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	t.Run("trims and dedupes case-insensitively", func(t *testing.T) {
		got := NormalizeTags([]string{"A", " a ", "a"})
		require.Equal(t, []string{"A"}, got)
	})

	t.Run("drops empties and preserves order", func(t *testing.T) {
		got := NormalizeTags([]string{"x", "x", " y ", "", "  "})
		require.Equal(t, []string{"x", "y"}, got)
	})

	t.Run("drops over-length tags", func(t *testing.T) {
		long := strings.Repeat("z", MaxTagLength+1)
		got := NormalizeTags([]string{long, "ok"})
		require.Equal(t, []string{"ok"}, got)
	})

	t.Run("caps at the max", func(t *testing.T) {
		in := make([]string, 0, MaxTagsPerEntity+5)
		for i := 0; i < MaxTagsPerEntity+5; i++ {
			in = append(in, strings.Repeat("a", i+1))
		}
		require.Len(t, NormalizeTags(in), MaxTagsPerEntity)
	})

	t.Run("never returns nil", func(t *testing.T) {
		require.NotNil(t, NormalizeTags(nil))
		require.NotNil(t, NormalizeTags([]string{" "}))
	})
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "hacker-news", Slugify("Hacker News"))
	require.Equal(t, "the-go-blog", Slugify("  The Go  Blog! "))
	require.Equal(t, "rss2", Slugify("RSS2"))
	require.Equal(t, "", Slugify("---"))
}

func TestCategoryHelpers(t *testing.T) {
	require.True(t, IsPredefinedCategory("ideas"))
	require.False(t, IsPredefinedCategory("Ideas"))
	require.False(t, IsPredefinedCategory("recipes"))

	require.True(t, ValidCategoryName("my-recipes"))
	require.False(t, ValidCategoryName("My Recipes"))
	require.False(t, ValidCategoryName(""))
	require.False(t, ValidCategoryName(strings.Repeat("a", 51)))
}

func TestWorkflowEnums(t *testing.T) {
	require.True(t, ValidPriority(PriorityUrgent))
	require.False(t, ValidPriority("critical"))

	require.True(t, ValidWorkflowStatus(StatusDraft))
	require.False(t, ValidWorkflowStatus("pending"))

	require.True(t, ValidStepStatus(StepStatusInProgress))
	require.False(t, ValidStepStatus("archived"))
}

func TestUserCanMutateNotes(t *testing.T) {
	admin := User{Role: RoleAdmin}
	require.True(t, admin.CanMutateNotes())

	viewer := User{Role: RoleViewer, CanCreateNotes: false}
	require.False(t, viewer.CanMutateNotes())

	editor := User{Role: RoleEditor, CanCreateNotes: true}
	require.True(t, editor.CanMutateNotes())
}
