package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	err := WithDetails(ErrDuplicateInBatch, "", map[string][]string{"emails": {"a@x.com"}})

	assert.Equal(t, ErrDuplicateInBatch.Code, err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.NotNil(t, err.Details)
	assert.Nil(t, ErrDuplicateInBatch.Details)
}

func TestHasCodeThroughWrapping(t *testing.T) {
	base := Clone(ErrInvalidPagination, "page must be >= 0")
	wrapped := fmt.Errorf("search: %w", base)

	assert.True(t, HasCode(wrapped, ErrInvalidPagination.Code))
	assert.False(t, HasCode(wrapped, ErrInvalidQuery.Code))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrInvalidQuery.Code))
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}
