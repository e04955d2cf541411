package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleAdmin, PermSettingsEdit, true},
		{RoleAdmin, "anything:else", true},
		{RoleEditor, PermFormEdit, true},
		{RoleEditor, PermLeadUpdate, true},
		{RoleEditor, PermSubmissionDelete, false},
		{RoleEditor, PermSettingsEdit, false},
		{RoleViewer, PermFormView, true},
		{RoleViewer, PermFormEdit, false},
		{RoleViewer, PermEventsView, false},
		{"", PermFormView, false},
		{"ghost", PermFormView, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Has(tc.role, tc.perm), "%s %s", tc.role, tc.perm)
	}
	assert.Equal(t, []string{"*"}, PermissionsFor(RoleAdmin))
	assert.Empty(t, PermissionsFor("ghost"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermFormEdit)(ok)

	for role, want := range map[string]int{
		"":         http.StatusForbidden,
		RoleViewer: http.StatusForbidden,
		RoleEditor: http.StatusNoContent,
		RoleAdmin:  http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/forms", nil)
		if role != "" {
			req = req.WithContext(WithRole(req.Context(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role=%q", role)
	}
}

func TestCustomPolicy(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"events:*"}})
	assert.True(t, c.Has("auditor", PermEventsView))
	assert.False(t, c.Has(RoleAdmin, PermEventsView))
	assert.Equal(t, []string{"events:*"}, c.Permissions("auditor"))
}
