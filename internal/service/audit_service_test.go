package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-platform/internal/model"
	"league-platform/pkg/apierror"
)

func TestAuditService_Log(t *testing.T) {
	store := &memoryAudit{}
	svc := NewAuditService(store)
	svc.now = func() time.Time { return testNow }

	svc.Log(context.Background(), AuditMagicLinkRedeemed, model.AuditActor{UserID: "17"}, AuditStatusSuccess, "", nil, "")

	require.Len(t, store.entries, 1)
	assert.Equal(t, "2024-03-01T12:00:00Z", store.entries[0].OccurredAt)
	assert.Equal(t, "17", store.entries[0].Actor.UserID)
}

func TestAuditService_LogSwallowsStoreErrors(t *testing.T) {
	svc := NewAuditService(&memoryAudit{err: errors.New("disk full")})
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), AuditMagicLinkRequested, model.AuditActor{}, AuditStatusSuccess, "", nil, "")
	})

	var nilSvc *AuditService
	assert.NotPanics(t, func() {
		nilSvc.Log(context.Background(), AuditMagicLinkRequested, model.AuditActor{}, AuditStatusSuccess, "", nil, "")
	})
}

func TestAuditService_QueryValidatesTimes(t *testing.T) {
	svc := NewAuditService(&memoryAudit{})

	_, _, err := svc.Query(context.Background(), model.AuditQuery{From: "yesterday"})
	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)

	_, meta, err := svc.Query(context.Background(), model.AuditQuery{From: "2024-03-01T00:00:00Z", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, meta.Limit)
}
