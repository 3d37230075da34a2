package record

// Field names one logical value and the physical keys it may appear under,
// in precedence order.
type Field struct {
	Name string
	Keys []string
}

func (f Field) Get(r Record, fallback any) any {
	return Get(r, f.Keys, fallback)
}

func (f Field) String(r Record) string {
	return String(r, f.Keys, "")
}

func (f Field) StringOr(r Record, fallback string) string {
	return String(r, f.Keys, fallback)
}

func (f Field) Bool(r Record, fallback bool) bool {
	return Bool(r, f.Keys, fallback)
}

func (f Field) Strings(r Record) []string {
	return Strings(r, f.Keys)
}

// The backend returns the same logical field under several spellings
// depending on the endpoint. Order matters: earlier keys win.
var (
	AppCode = Field{Name: "appCode", Keys: []string{
		"apP_CODE", "appCode", "app_code", "AppCode", "APP_CODE", "applicationCode",
	}}
	AppName = Field{Name: "appName", Keys: []string{
		"apP_NAME", "appName", "app_name", "AppName", "APP_NAME", "applicationName", "name",
	}}
	AppDescription = Field{Name: "description", Keys: []string{
		"apP_DESC", "appDesc", "description", "app_desc", "AppDesc", "APP_DESC", "DESCRIPTION",
	}}
	AppURL = Field{Name: "appUrl", Keys: []string{
		"apP_URL", "appUrl", "app_url", "AppUrl", "APP_URL", "url",
	}}
	Status = Field{Name: "status", Keys: []string{
		"status", "Status", "STATUS", "isActive", "is_active", "IS_ACTIVE", "active",
	}}

	RoleCode = Field{Name: "roleCode", Keys: []string{
		"rolE_CODE", "roleCode", "role_code", "RoleCode", "ROLE_CODE",
	}}
	RoleName = Field{Name: "roleName", Keys: []string{
		"rolE_NAME", "roleName", "role_name", "RoleName", "ROLE_NAME",
	}}
	RoleDescription = Field{Name: "roleDescription", Keys: []string{
		"rolE_DESC", "roleDesc", "role_desc", "RoleDesc", "ROLE_DESC", "description",
	}}

	FuncCode = Field{Name: "funcCode", Keys: []string{
		"funC_CODE", "funcCode", "func_code", "FuncCode", "FUNC_CODE", "functionCode",
	}}
	FuncName = Field{Name: "funcName", Keys: []string{
		"funC_NAME", "funcName", "func_name", "FuncName", "FUNC_NAME", "functionName",
	}}
	FuncURL = Field{Name: "funcUrl", Keys: []string{
		"funC_URL", "funcUrl", "func_url", "FuncUrl", "FUNC_URL",
	}}
	FuncCodes = Field{Name: "funcCodes", Keys: []string{
		"funC_CODES", "funcCodes", "func_codes", "FuncCodes", "FUNC_CODES", "functions",
	}}

	RbacCode = Field{Name: "rbacCode", Keys: []string{
		"rbaC_CODE", "rbacCode", "rbac_code", "RbacCode", "RBAC_CODE", "code",
	}}

	AuthCode = Field{Name: "authCode", Keys: []string{
		"autH_CODE", "authCode", "auth_code", "AuthCode", "AUTH_CODE",
	}}
	UserID = Field{Name: "userId", Keys: []string{
		"useR_ID", "userId", "user_id", "UserId", "USER_ID", "userID",
	}}
	UserName = Field{Name: "userName", Keys: []string{
		"useR_NAME", "userName", "user_name", "UserName", "USER_NAME", "fullName", "name",
	}}
	Facility = Field{Name: "facility", Keys: []string{
		"facilitY_CODE", "facilityCode", "facility_code", "FacilityCode", "FACILITY_CODE", "facility",
	}}
	FacilityName = Field{Name: "facilityName", Keys: []string{
		"facilitY_NAME", "facilityName", "facility_name", "FacilityName", "FACILITY_NAME",
	}}
	Facilities = Field{Name: "facilities", Keys: []string{
		"facilities", "facilitY_CODES", "facilityCodes", "facility_codes", "FACILITY_CODES",
	}}

	CreatedBy = Field{Name: "createdBy", Keys: []string{
		"createD_BY", "createdBy", "created_by", "CreatedBy", "CREATED_BY",
	}}
	CreatedAt = Field{Name: "createdAt", Keys: []string{
		"createD_DATE", "createdDate", "createdAt", "created_at", "CreatedDate", "CREATED_DATE",
	}}
	UpdatedAt = Field{Name: "updatedAt", Keys: []string{
		"updateD_DATE", "updatedDate", "updatedAt", "updated_at", "UpdatedDate", "UPDATED_DATE",
	}}

	DisplayName = Field{Name: "displayName", Keys: []string{
		"displayName", "display_name", "DisplayName", "fullName", "name", "userName", "username",
	}}
)

// All lists every field table; used by tests and the detail view.
func All() []Field {
	return []Field{
		AppCode, AppName, AppDescription, AppURL, Status,
		RoleCode, RoleName, RoleDescription,
		FuncCode, FuncName, FuncURL, FuncCodes,
		RbacCode,
		AuthCode, UserID, UserName, Facility, FacilityName, Facilities,
		CreatedBy, CreatedAt, UpdatedAt,
		DisplayName,
	}
}
