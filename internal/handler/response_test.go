package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podclip/backend/internal/domain"
)

func TestErrorQuotaExceededBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, &domain.QuotaExceededError{
		Feature: domain.FeatureSummary, Used: 1, Limit: 1, Plan: domain.PlanFree,
	})

	assert.Equal(t, 402, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "quota exceeded", body["error"])
	assert.Equal(t, "summary", body["feature"])
	assert.Equal(t, float64(1), body["used"])
	assert.Equal(t, float64(1), body["limit"])
	assert.Equal(t, "free", body["plan"])
}

func TestErrorAppErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, domain.ErrNotFound("no such summary"))

	assert.Equal(t, 404, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no such summary", body["error"])
}

func TestErrorUnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("boom"))

	assert.Equal(t, 500, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}
