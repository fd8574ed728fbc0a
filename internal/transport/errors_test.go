package transport

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{account.ErrAuthFailure, KindAuth, http.StatusUnauthorized},
		{account.ErrDuplicateAccount, KindDuplicate, http.StatusConflict},
		{fmt.Errorf("get: %w", project.ErrPermissionDenied), KindPermission, http.StatusForbidden},
		{project.ErrProjectNotFound, KindNotFound, http.StatusNotFound},
		{fmt.Errorf("predicting cost: %w", inference.ErrBackendUnavailable), KindUnavailable, http.StatusServiceUnavailable},
		{account.ErrPasswordMismatch, KindValidation, http.StatusBadRequest},
		{prediction.ErrUnknownTerrain, KindValidation, http.StatusBadRequest},
		{fmt.Errorf("boom"), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		body, status := MapError(tt.err)
		require.Equal(t, tt.kind, body.Code, tt.err.Error())
		require.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestMapError_InternalHidesDetail(t *testing.T) {
	body, _ := MapError(fmt.Errorf("failed to get project: disk I/O error"))
	require.Equal(t, "internal error", body.Message)
}
