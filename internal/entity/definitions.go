package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
)

// ApplicationCodePattern is APP_, an alphanumeric name, and a numeric suffix.
var ApplicationCodePattern = regexp.MustCompile(`^APP_[A-Za-z0-9]+_[0-9]+$`)

const (
	SelectorStatus = "status"
	SelectorApp    = "app"
	SelectorRole   = "role"
)

var (
	statusSelector = Selector{Name: SelectorStatus, Flag: "status", Label: "Status", Field: record.Status, Value: statusText}
	appSelector    = Selector{Name: SelectorApp, Flag: "app", Label: "Application", Field: record.AppCode}
	roleSelector   = Selector{Name: SelectorRole, Flag: "role", Label: "Role", Field: record.RoleCode}

	appCodePayload = PayloadField{
		Flag: "app", Key: "appCode", Usage: "Application code", Field: record.AppCode, Identity: true,
	}
)

// statusText renders boolean style status values as Active or Inactive and
// passes other text through.
func statusText(r record.Record) string {
	raw := strings.TrimSpace(record.Status.String(r))
	if raw == "" {
		return ""
	}
	switch v := record.Status.Get(r, nil).(type) {
	case bool:
		if v {
			return "Active"
		}
		return "Inactive"
	case string:
		switch strings.ToLower(v) {
		case "y", "1", "true", "a":
			return "Active"
		case "n", "0", "false", "i":
			return "Inactive"
		}
	}
	return raw
}

func labelled(code, name record.Field) func(record.Record) string {
	return func(r record.Record) string {
		c, n := code.String(r), name.String(r)
		if n == "" || n == c {
			return c
		}
		return fmt.Sprintf("%s (%s)", c, n)
	}
}

var appCodeSort = record.AppCode

var (
	Application = register(&Definition{
		Name:    "application",
		Plural:  "applications",
		Title:   "Applications",
		Aliases: []string{"app", "apps"},
		Key:     record.AppCode,
		Search:  []record.Field{record.AppCode, record.AppName, record.AppDescription},
		Selectors: []Selector{
			statusSelector,
		},
		SortBy: &appCodeSort,
		Columns: []export.ColumnSpec{
			export.Column("Code", record.AppCode),
			export.Column("Name", record.AppName),
			export.Column("Description", record.AppDescription),
			export.Column("URL", record.AppURL),
			{Header: "Status", Keys: record.Status.Keys, Formatter: statusText},
		},
		Payload: []PayloadField{
			{Flag: "code", Key: "appCode", Usage: "Application code, e.g. APP_HR_1", Field: record.AppCode, Identity: true},
			{Flag: "name", Key: "appName", Usage: "Application name", Field: record.AppName},
			{Flag: "description", Key: "appDesc", Usage: "Description", Field: record.AppDescription},
			{Flag: "url", Key: "appUrl", Usage: "Application URL", Field: record.AppURL},
			{Flag: "active", Key: "isActive", Usage: "Whether the application is active", Field: record.Status, Bool: true},
		},
		Validators: []mutation.Validator{
			func(p record.Record, v *mutation.Validation) {
				v.Required(p, "code", record.AppCode)
				v.Required(p, "name", record.AppName)
				v.Match(p, "code", record.AppCode, ApplicationCodePattern,
					"must look like APP_<NAME>_<number>, e.g. APP_HR_1")
			},
		},
		Label: labelled(record.AppCode, record.AppName),
		bind: func(d *Definition, api helpers.API) Ops {
			return crudOps(d, api.GetApplicationAPI())
		},
	})

	Role = register(&Definition{
		Name:    "role",
		Plural:  "roles",
		Title:   "Application Roles",
		Aliases: []string{"appsroles", "apps-roles", "app-roles"},
		Key:     record.RoleCode,
		Search:  []record.Field{record.RoleCode, record.RoleName, record.AppCode},
		Selectors: []Selector{
			appSelector,
		},
		Columns: []export.ColumnSpec{
			export.Column("App Code", record.AppCode),
			export.Column("Role Code", record.RoleCode),
			export.Column("Role Name", record.RoleName),
			export.Column("Description", record.RoleDescription),
		},
		Payload: []PayloadField{
			appCodePayload,
			{Flag: "code", Key: "roleCode", Usage: "Role code", Field: record.RoleCode, Identity: true},
			{Flag: "name", Key: "roleName", Usage: "Role name", Field: record.RoleName},
			{Flag: "description", Key: "roleDesc", Usage: "Description", Field: record.RoleDescription},
		},
		Validators: []mutation.Validator{func(p record.Record, v *mutation.Validation) {
			v.Required(p, "app", record.AppCode)
			v.Required(p, "code", record.RoleCode)
			v.Required(p, "name", record.RoleName)
		}},
		Label: labelled(record.RoleCode, record.RoleName),
		bind: func(d *Definition, api helpers.API) Ops {
			ops := crudOps(d, api.GetAppsRolesAPI())
			ops.Related = assignedFunctions(api.GetRbacAPI())
			return ops
		},
	})

	Function = register(&Definition{
		Name:    "function",
		Plural:  "functions",
		Title:   "Application Functions",
		Aliases: []string{"func", "funcs", "appsfunctions", "apps-functions"},
		Key:     record.FuncCode,
		Search:  []record.Field{record.FuncCode, record.FuncName, record.AppCode},
		Selectors: []Selector{
			appSelector,
		},
		SortBy: &appCodeSort,
		Columns: []export.ColumnSpec{
			export.Column("App Code", record.AppCode),
			export.Column("Function Code", record.FuncCode),
			export.Column("Function Name", record.FuncName),
			export.Column("URL", record.FuncURL),
		},
		Payload: []PayloadField{
			appCodePayload,
			{Flag: "code", Key: "funcCode", Usage: "Function code", Field: record.FuncCode, Identity: true},
			{Flag: "name", Key: "funcName", Usage: "Function name", Field: record.FuncName},
			{Flag: "url", Key: "funcUrl", Usage: "Function URL", Field: record.FuncURL},
		},
		Validators: []mutation.Validator{func(p record.Record, v *mutation.Validation) {
			v.Required(p, "app", record.AppCode)
			v.Required(p, "code", record.FuncCode)
			v.Required(p, "name", record.FuncName)
		}},
		Label: labelled(record.FuncCode, record.FuncName),
		bind: func(d *Definition, api helpers.API) Ops {
			return crudOps(d, api.GetAppsFunctionsAPI())
		},
	})

	Rbac = register(&Definition{
		Name:    "rbac",
		Plural:  "rbac",
		Title:   "RBAC Assignments",
		Aliases: []string{"assignment", "assignments", "rbacs"},
		Key:     record.RbacCode,
		Search:  []record.Field{record.AppCode, record.RoleCode, record.FuncCode, record.FuncCodes},
		Selectors: []Selector{
			appSelector,
			roleSelector,
		},
		Columns: []export.ColumnSpec{
			export.Column("Code", record.RbacCode),
			export.Column("App Code", record.AppCode),
			export.Column("Role Code", record.RoleCode),
			{Header: "Functions", Keys: record.FuncCodes.Keys, Formatter: rbacFunctions},
		},
		Payload: []PayloadField{
			appCodePayload,
			{Flag: "role", Key: "roleCode", Usage: "Role code", Field: record.RoleCode, Identity: true},
			{Flag: "functions", Key: "funcCodes", Usage: "Granted function codes", Field: record.FuncCodes, List: true},
		},
		Validators: []mutation.Validator{func(p record.Record, v *mutation.Validation) {
			v.Required(p, "app", record.AppCode)
			v.Required(p, "role", record.RoleCode)
			v.Required(p, "functions", record.FuncCodes)
		}},
		Label: func(r record.Record) string {
			return fmt.Sprintf("%s (%s / %s)", record.RbacCode.String(r), record.AppCode.String(r), record.RoleCode.String(r))
		},
		bind: func(d *Definition, api helpers.API) Ops {
			rbac := api.GetRbacAPI()
			ops := crudOps(d, rbac)
			ops.Get = rbac.Get
			ops.Related = assignedFunctions(rbac)
			return ops
		},
	})

	User = register(&Definition{
		Name:    "user",
		Plural:  "users",
		Title:   "Authorized Users",
		Aliases: []string{"authorized-users", "grants"},
		Key:     record.AuthCode,
		Search: []record.Field{
			record.UserID, record.UserName, record.AppCode, record.RoleCode, record.Facility, record.Facilities,
		},
		Selectors: []Selector{
			appSelector,
			roleSelector,
		},
		DedupeBy: []record.Field{record.UserID, record.AppCode, record.RoleCode},
		Columns: []export.ColumnSpec{
			export.Column("Auth Code", record.AuthCode),
			export.Column("User ID", record.UserID),
			export.Column("User Name", record.UserName),
			export.Column("App Code", record.AppCode),
			export.Column("Role Code", record.RoleCode),
			{Header: "Facilities", Keys: record.Facilities.Keys, Formatter: userFacilities},
		},
		Payload: []PayloadField{
			{Flag: "user-id", Key: "userId", Usage: "User id", Field: record.UserID, Identity: true},
			{Flag: "name", Key: "userName", Usage: "User display name", Field: record.UserName},
			appCodePayload,
			{Flag: "role", Key: "roleCode", Usage: "Role code", Field: record.RoleCode},
			{Flag: "facilities", Key: "facilities", Usage: "Facility codes", Field: record.Facilities, List: true},
		},
		Validators: []mutation.Validator{func(p record.Record, v *mutation.Validation) {
			v.Required(p, "user-id", record.UserID)
			v.Required(p, "app", record.AppCode)
			v.Required(p, "role", record.RoleCode)
			v.Required(p, "facilities", record.Facilities)
		}},
		Label: func(r record.Record) string {
			return fmt.Sprintf("%s (%s / %s)", record.UserID.String(r), record.AppCode.String(r), record.RoleCode.String(r))
		},
		bind: func(_ *Definition, api helpers.API) Ops {
			return userOps(api.GetUserAPI())
		},
	})

	AppAuth = register(&Definition{
		Name:     "app-auth",
		Plural:   "app-auth",
		Title:    "Application Authorizations",
		Aliases:  []string{"appauth", "authorizations", "report"},
		ReadOnly: true,
		Search:   []record.Field{record.UserID, record.UserName, record.AppCode, record.RoleCode},
		Selectors: []Selector{
			appSelector,
			roleSelector,
		},
		DedupeBy: []record.Field{record.UserID, record.AppCode, record.RoleCode},
		Columns: []export.ColumnSpec{
			export.Column("User ID", record.UserID),
			export.Column("User Name", record.UserName),
			export.Column("App Code", record.AppCode),
			export.Column("App Name", record.AppName),
			export.Column("Role Code", record.RoleCode),
			export.Column("Role Name", record.RoleName),
			{Header: "Facility", Keys: record.Facility.Keys, Formatter: userFacilities},
		},
		bind: func(_ *Definition, api helpers.API) Ops {
			return readOnlyOps(api.GetAppAuthAPI().List)
		},
	})
)

// rbacFunctions lists either the single function code or the granted list.
func rbacFunctions(r record.Record) string {
	if codes := record.FuncCodes.Strings(r); len(codes) > 0 {
		return strings.Join(codes, ", ")
	}
	return record.FuncCode.String(r)
}

func userFacilities(r record.Record) string {
	if codes := record.Facilities.Strings(r); len(codes) > 0 {
		return strings.Join(codes, ", ")
	}
	return record.Facility.String(r)
}
