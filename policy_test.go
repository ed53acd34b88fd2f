package aclkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDecisionCandidates tests the candidate expansion for action decisions
func TestDecisionCandidates(t *testing.T) {
	t.Run("Instance action on an instance", func(t *testing.T) {
		candidates := decisionCandidates(NewResource("models.Article", "42"), ActionUpdate)

		assert.Len(t, candidates, 2)
		assert.Equal(t, "article.update", candidates[0].name)
		assert.Equal(t, "models.Article", candidates[0].resourceType)
		assert.Equal(t, "42", candidates[0].resourceID)
		assert.Equal(t, "article.updateAny", candidates[1].name)
		assert.Equal(t, "models.Article", candidates[1].resourceType)
		assert.Equal(t, "", candidates[1].resourceID)
	})

	t.Run("Type action strips the instance id", func(t *testing.T) {
		candidates := decisionCandidates(NewResource("models.Article", "42"), ActionCreate)

		assert.Len(t, candidates, 1)
		assert.Equal(t, "article.create", candidates[0].name)
		assert.Equal(t, "", candidates[0].resourceID)
	})

	t.Run("Any suffixed action is type scoped", func(t *testing.T) {
		candidates := decisionCandidates(NewResource("models.Article", "42"), ActionDeleteAny)

		assert.Len(t, candidates, 1)
		assert.Equal(t, "article.deleteAny", candidates[0].name)
		assert.Equal(t, "", candidates[0].resourceID)
	})

	t.Run("Id-less resource checks type scope only", func(t *testing.T) {
		candidates := decisionCandidates(NewResource("models.Article", ""), ActionView)

		assert.Len(t, candidates, 1)
		assert.Equal(t, "article.view", candidates[0].name)
		assert.Equal(t, "models.Article", candidates[0].resourceType)
		assert.Equal(t, "", candidates[0].resourceID)
	})

	t.Run("Prefix override carries into candidates", func(t *testing.T) {
		r := prefixedResource{ResourceRef: NewResource("models.Document", "7")}
		candidates := decisionCandidates(r, ActionView)

		assert.Len(t, candidates, 2)
		assert.Equal(t, "doc.view", candidates[0].name)
		assert.Equal(t, "doc.viewAny", candidates[1].name)
	})
}

// TestIsTypeAction tests the type-scope action classification
func TestIsTypeAction(t *testing.T) {
	tests := []struct {
		action string
		want   bool
	}{
		{ActionCreate, true},
		{ActionViewAny, true},
		{ActionUpdateAny, true},
		{ActionDeleteAny, true},
		{"publishAny", true},
		{ActionView, false},
		{ActionUpdate, false},
		{ActionDelete, false},
		{ActionRestore, false},
		{ActionForceDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, isTypeAction(tt.action))
		})
	}
}
