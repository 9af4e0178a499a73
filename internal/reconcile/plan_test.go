package reconcile

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/pkg/models"
)

func TestPlan_Print(t *testing.T) {
	id := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	p := &Plan{Actions: []Action{
		{Kind: ActionDelete, Article: models.Article{ID: id, Filename: "gone.md", Title: "Gone"}},
		{Kind: ActionInsert, Article: models.Article{ID: id, Filename: "new.md", Title: "New"}},
		{Kind: ActionKeep, Article: models.Article{ID: id, Filename: "same.md", Title: "Same"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, p.Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "gone.md")
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "1 to delete, 1 to insert, 0 to update, 1 unchanged")
}
