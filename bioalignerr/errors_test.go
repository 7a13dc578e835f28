package bioalignerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/bioalign/bioalignerr"
)

func TestKindFatal(t *testing.T) {
	assert.True(t, bioalignerr.InvalidInput.Fatal())
	assert.True(t, bioalignerr.ResourceExhaustion.Fatal())
	assert.False(t, bioalignerr.AmbiguitySkipped.Fatal())
	assert.False(t, bioalignerr.EmptyResult.Fatal())
	assert.False(t, bioalignerr.Cancelled.Fatal())
}

func TestWrapAndIs(t *testing.T) {
	cause := bioalignerr.New(bioalignerr.InvalidInput, "bad symbol %q", 'Z')
	wrapped := bioalignerr.Wrap(bioalignerr.EmptyResult, cause, "harmonization failed")
	assert.True(t, bioalignerr.Is(wrapped, bioalignerr.EmptyResult))
	assert.False(t, bioalignerr.Is(wrapped, bioalignerr.InvalidInput))
	assert.Contains(t, wrapped.Error(), "harmonization failed")
	assert.Contains(t, wrapped.Error(), "bad symbol")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, bioalignerr.Wrap(bioalignerr.Cancelled, nil, "x"))
}
