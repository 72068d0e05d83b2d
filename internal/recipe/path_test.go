package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldPathString(t *testing.T) {
	var root fieldPath
	assert.Equal(t, ".", root.String())
	assert.Equal(t, "name", root.key("name").String())
	assert.Equal(t, "recipeIngredient[2]", root.key("recipeIngredient").index(2).String())
	assert.Equal(t, "recipeInstructions[1].text", root.key("recipeInstructions").index(1).key("text").String())
	assert.Equal(t, "[0]", root.index(0).String())
}

func TestFieldPathBranchesDoNotAlias(t *testing.T) {
	base := fieldPath(nil).key("recipeInstructions")
	a := base.index(0)
	b := base.index(1)
	assert.Equal(t, "recipeInstructions[0]", a.String())
	assert.Equal(t, "recipeInstructions[1]", b.String())
}
