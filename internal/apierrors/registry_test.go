package apierrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CoreCodesRegistered(t *testing.T) {
	for _, code := range []string{
		CodeInvalidRequest,
		CodeNotFound,
		CodeInternalError,
		CodeDuplicateSubmission,
		CodeInvalidRating,
		CodeEmptyMessage,
	} {
		e, ok := Registry.Get(code)
		require.True(t, ok, "code %s should be registered", code)
		assert.NotEmpty(t, e.Message)
		assert.NotZero(t, e.HTTPStatus)
	}
}

func TestRegistry_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Registry.HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, Registry.HTTPStatus(CodeInternalError))

	// Duplicate submission is surfaced as 400, not 409
	assert.Equal(t, http.StatusBadRequest, Registry.HTTPStatus(CodeDuplicateSubmission))

	// Unknown codes fall back to 500
	assert.Equal(t, http.StatusInternalServerError, Registry.HTTPStatus("nope:missing"))
}

func TestRegistry_Message(t *testing.T) {
	assert.Equal(t, "Resource not found", Registry.Message(CodeNotFound))

	// Unknown codes echo the code itself
	assert.Equal(t, "nope:missing", Registry.Message("nope:missing"))
}

func TestRegistry_ByNamespace(t *testing.T) {
	feedback := Registry.ByNamespace("feedback")
	require.NotEmpty(t, feedback)

	codes := make([]string, 0, len(feedback))
	for _, e := range feedback {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, CodeDuplicateSubmission)
	assert.Contains(t, codes, CodeInvalidRating)

	assert.Nil(t, Registry.ByNamespace("unknown"))
}
