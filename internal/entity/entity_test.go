package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLookup(t *testing.T) {
	tests := map[string]*Definition{
		"applications":     Application,
		"App":              Application,
		"roles":            Role,
		"apps-roles":       Role,
		"FUNCTIONS":        Function,
		"rbac":             Rbac,
		"assignments":      Rbac,
		"user":             User,
		"authorized-users": User,
		"app-auth":         AppAuth,
	}
	for name, want := range tests {
		got, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Same(t, want, got, name)
	}

	_, err := Lookup("widgets")
	assert.ErrorContains(t, err, "unknown resource")
}

func TestRegistryOrderAndNames(t *testing.T) {
	assert.Equal(t, []string{"applications", "roles", "functions", "rbac", "users", "app-auth"}, Names())
	assert.Len(t, All(), 6)
}

func TestApplicationPrepareSortsByCode(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "APP_b_1"},
		{"appCode": "APP_A_1"},
		{"AppCode": "APP_C_1"},
	}

	got := Application.Prepare(collection, language.English)

	codes := make([]string, 0, len(got))
	for _, r := range got {
		codes = append(codes, Application.KeyOf(r))
	}
	assert.Equal(t, []string{"APP_A_1", "APP_b_1", "APP_C_1"}, codes)
	assert.Equal(t, "APP_b_1", Application.KeyOf(collection[0]), "input untouched")
}

func TestUserPrepareDedupesGrants(t *testing.T) {
	collection := []record.Record{
		{"autH_CODE": "1", "useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R", "facilitY_CODE": "NYC"},
		{"autH_CODE": "2", "useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R", "facilitY_CODE": "LDN"},
		{"autH_CODE": "3", "useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "X"},
	}
	got := User.Prepare(collection, language.English)
	require.Len(t, got, 2)
	assert.Equal(t, "1", User.KeyOf(got[0]))
	assert.Equal(t, "3", User.KeyOf(got[1]))
}

func TestMatcherUsesSearchAndSelectors(t *testing.T) {
	collection := []record.Record{
		{"rbaC_CODE": "1", "apP_CODE": "APP_HR_1", "rolE_CODE": "ADMIN", "funC_CODE": "PAYROLL"},
		{"rbaC_CODE": "2", "apP_CODE": "APP_HR_1", "rolE_CODE": "VIEWER", "funC_CODE": "REPORTS"},
		{"rbaC_CODE": "3", "apP_CODE": "APP_FIN_1", "rolE_CODE": "ADMIN", "funcCodes": []any{"LEDGER"}},
	}
	m := Rbac.Matcher()

	got := m.Filter(collection, listing.Criteria{Search: "ledger"})
	require.Len(t, got, 1)
	assert.Equal(t, "3", Rbac.KeyOf(got[0]))

	got = m.Filter(collection, listing.Criteria{}.WithSelector(SelectorApp, "app_hr_1").WithSelector(SelectorRole, "admin"))
	require.Len(t, got, 1)
	assert.Equal(t, "1", Rbac.KeyOf(got[0]))
}

func TestApplicationStatusSelectorMatchesDisplayedStatus(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "APP_HR_1", "isActive": true},
		{"apP_CODE": "APP_FIN_2", "status": "Y"},
		{"apP_CODE": "APP_OPS_3", "isActive": false},
		{"apP_CODE": "APP_LAB_4", "status": "Pending"},
	}
	m := Application.Matcher()
	codes := func(recs []record.Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, Application.KeyOf(r))
		}
		return out
	}

	for _, value := range []string{"active", "Active", "ACTIVE"} {
		got := m.Filter(collection, listing.Criteria{}.WithSelector(SelectorStatus, value))
		assert.Equal(t, []string{"APP_HR_1", "APP_FIN_2"}, codes(got), value)
	}

	got := m.Filter(collection, listing.Criteria{}.WithSelector(SelectorStatus, "inactive"))
	assert.Equal(t, []string{"APP_OPS_3"}, codes(got))

	got = m.Filter(collection, listing.Criteria{}.WithSelector(SelectorStatus, "pending"))
	assert.Equal(t, []string{"APP_LAB_4"}, codes(got))

	sel, ok := Application.Selector(SelectorStatus)
	require.True(t, ok)
	assert.Equal(t, []string{"Active", "Inactive", "Pending"}, listing.DistinctBy(collection, sel.ValueOf))
}

func TestTableProjection(t *testing.T) {
	table := Application.Table([]record.Record{
		{"apP_CODE": "APP_HR_1", "apP_NAME": "HR", "status": "Y"},
		{"appCode": "APP_FIN_2", "appName": "Finance", "isActive": false},
	})

	assert.Equal(t, "Applications", table.Title)
	assert.Equal(t, []string{"Code", "Name", "Description", "URL", "Status"}, table.Headers)
	want := [][]string{
		{"APP_HR_1", "HR", "", "", "Active"},
		{"APP_FIN_2", "Finance", "", "", "Inactive"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	rbac := Rbac.Table([]record.Record{{"rbaC_CODE": "9", "funC_CODES": []any{"F1", "F2"}}})
	assert.Equal(t, "F1, F2", rbac.Rows[0][3])
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		def     *Definition
		payload record.Record
		fields  []string
	}{
		{"application ok", Application, record.Record{"appCode": "APP_HR_12", "appName": "HR"}, nil},
		{"application bad code", Application, record.Record{"appCode": "APP_HR_X", "appName": "HR"}, []string{"code"}},
		{"application missing", Application, record.Record{"appName": " "}, []string{"code", "name"}},
		{"role", Role, record.Record{"roleCode": "R"}, []string{"app", "name"}},
		{"function", Function, record.Record{"appCode": "A", "funcCode": "F"}, []string{"name"}},
		{"rbac empty functions", Rbac, record.Record{"appCode": "A", "roleCode": "R", "funcCodes": []any{}}, []string{"functions"}},
		{"user", User, record.Record{"userId": "u1", "appCode": "A", "roleCode": "R"}, []string{"facilities"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mutation.Validate(tt.payload, tt.def.Validators...)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *mutation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.FieldNames())
		})
	}
}

func TestBuildPayload(t *testing.T) {
	base := record.Record{"apP_CODE": "APP_HR_1", "apP_NAME": "HR", "status": "Y", "extra": "dropped"}

	payload, err := Application.BuildPayload(base, map[string]any{"name": " Human Resources "}, true)
	require.NoError(t, err)
	assert.Equal(t, record.Record{"appCode": "APP_HR_1", "appName": "Human Resources", "isActive": true}, payload)

	_, err = Application.BuildPayload(base, map[string]any{"code": "APP_OTHER_1"}, true)
	assert.ErrorContains(t, err, "cannot be changed")

	payload, err = Rbac.BuildPayload(nil, map[string]any{"app": "A", "role": "R", "functions": "F1, F2"}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"F1", "F2"}, payload["funcCodes"])

	_, err = Application.BuildPayload(nil, map[string]any{"active": "maybe"}, false)
	assert.ErrorContains(t, err, "not a boolean")
}

func TestParsePayloadAndOverrides(t *testing.T) {
	doc, err := ParsePayload([]byte("apP_CODE: APP_HR_1\nappName: HR\nfunctions:\n  - F1\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"code": "APP_HR_1", "name": "HR"}, Application.Overrides(doc))

	_, err = ParsePayload([]byte("- not\n- a map\n"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "application APP_HR_1 (HR)", Application.Describe(record.Record{"apP_CODE": "APP_HR_1", "apP_NAME": "HR"}))
	assert.Equal(t, "role ADMIN", Role.Describe(record.Record{"rolE_CODE": "ADMIN"}))
	assert.Equal(t, "user u1 (A / R)", User.Describe(record.Record{"useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R"}))
}

func TestUserDeleteResolvesGrant(t *testing.T) {
	api := helpers.NewMockAPI()
	ctx := context.Background()
	api.Users.On("Get", ctx, "42").Return(record.Record{"useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R"}, nil).Once()
	api.Users.On("Delete", ctx, "u1", "A", "R").Return(nil).Twice()

	ops := User.Bind(api)
	require.NoError(t, ops.Delete(ctx, "42"))
	require.NoError(t, ops.Delete(ctx, GrantKey("u1", "A", "R")))
	api.Users.AssertExpectations(t)
}

func TestRelatedLookups(t *testing.T) {
	api := helpers.NewMockAPI()
	ctx := context.Background()
	api.Rbac.On("AssignedFunctionCodes", ctx, "APP_HR_1", "R_ADMIN").Return([]string{"PAYROLL"}, nil).Twice()
	api.Users.On("UserFacilities", ctx, "u1", "APP_HR_1", "R_ADMIN").Return([]string{"F01"}, nil).Once()
	grant := record.Record{"useR_ID": "u1", "apP_CODE": "APP_HR_1", "rolE_CODE": "R_ADMIN"}

	for _, def := range []*Definition{Role, Rbac} {
		rel := def.Bind(api).Related
		require.NotNil(t, rel, def.Name)
		assert.Equal(t, "Assigned functions", rel.Title)
		codes, err := rel.Fetch(ctx, grant)
		require.NoError(t, err)
		assert.Equal(t, []string{"PAYROLL"}, codes)
	}

	rel := User.Bind(api).Related
	require.NotNil(t, rel)
	codes, err := rel.Fetch(ctx, grant)
	require.NoError(t, err)
	assert.Equal(t, []string{"F01"}, codes)

	assert.Nil(t, Application.Bind(api).Related)
	assert.Nil(t, AppAuth.Bind(api).Related)
	api.Rbac.AssertExpectations(t)
	api.Users.AssertExpectations(t)
}

func TestGetByListingReportsNotFound(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return([]record.Record{{"rolE_CODE": "ADMIN"}}, nil)

	ops := Role.Bind(api)
	r, err := ops.Get(context.Background(), "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", Role.KeyOf(r))

	_, err = ops.Get(context.Background(), "NOPE")
	assert.True(t, helpers.IsNotFound(err))
}

func TestReadOnlyOps(t *testing.T) {
	api := helpers.NewMockAPI()
	ops := AppAuth.Bind(api)
	_, err := ops.Create(context.Background(), record.Record{})
	assert.True(t, errors.Is(err, ErrReadOnly))
	assert.True(t, errors.Is(ops.Delete(context.Background(), "x"), ErrReadOnly))
}

func TestDetail(t *testing.T) {
	got := Detail(record.Record{"b": 2.0, "a": "x", "nil": nil})
	assert.Equal(t, [][2]string{{"a", "x"}, {"b", "2"}}, got)
}
