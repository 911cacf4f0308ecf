package directory

type PermissionCategory string

const (
	CategoryUserManagement PermissionCategory = "user_management"
	CategoryReporting      PermissionCategory = "reporting"
	CategorySystem         PermissionCategory = "system"
	CategoryTimeClock      PermissionCategory = "time_clock"
	CategoryPayroll        PermissionCategory = "payroll"
	CategoryHR             PermissionCategory = "hr"
)

// Categories lists the permission categories in display order.
var Categories = []PermissionCategory{
	CategoryUserManagement,
	CategoryReporting,
	CategorySystem,
	CategoryTimeClock,
	CategoryPayroll,
	CategoryHR,
}

type PermissionLevel string

const (
	LevelRead  PermissionLevel = "read"
	LevelWrite PermissionLevel = "write"
	LevelAdmin PermissionLevel = "admin"
)

type Permission struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    PermissionCategory `json:"category"`
	Level       PermissionLevel    `json:"level"`
}

const (
	PermUserView          = "user_view"
	PermUserCreate        = "user_create"
	PermUserEdit          = "user_edit"
	PermUserDelete        = "user_delete"
	PermUserRoles         = "user_roles"
	PermReportsView       = "reports_view"
	PermReportsCreate     = "reports_create"
	PermReportsExport     = "reports_export"
	PermReportsSchedule   = "reports_schedule"
	PermSystemSettings    = "system_settings"
	PermSystemBackup      = "system_backup"
	PermSystemLogs        = "system_logs"
	PermSystemMaintenance = "system_maintenance"
	PermTimeclockView     = "timeclock_view"
	PermTimeclockEdit     = "timeclock_edit"
	PermTimeclockApprove  = "timeclock_approve"
	PermTimeclockSettings = "timeclock_settings"
	PermPayrollView       = "payroll_view"
	PermPayrollProcess    = "payroll_process"
	PermPayrollApprove    = "payroll_approve"
	PermPayrollReports    = "payroll_reports"
	PermHRDocuments       = "hr_documents"
	PermHRBenefits        = "hr_benefits"
	PermHRPerformance     = "hr_performance"
	PermHRCompliance      = "hr_compliance"
)

var permissionCatalog = []Permission{
	{ID: PermUserView, Name: "View Users", Description: "View employee profiles and basic information", Category: CategoryUserManagement, Level: LevelRead},
	{ID: PermUserCreate, Name: "Create Users", Description: "Add new employees to the system", Category: CategoryUserManagement, Level: LevelWrite},
	{ID: PermUserEdit, Name: "Edit Users", Description: "Modify employee information and settings", Category: CategoryUserManagement, Level: LevelWrite},
	{ID: PermUserDelete, Name: "Delete Users", Description: "Remove employees from the system", Category: CategoryUserManagement, Level: LevelAdmin},
	{ID: PermUserRoles, Name: "Manage User Roles", Description: "Assign and modify user roles and permissions", Category: CategoryUserManagement, Level: LevelAdmin},

	{ID: PermReportsView, Name: "View Reports", Description: "Access and view system reports", Category: CategoryReporting, Level: LevelRead},
	{ID: PermReportsCreate, Name: "Create Reports", Description: "Generate custom reports and analytics", Category: CategoryReporting, Level: LevelWrite},
	{ID: PermReportsExport, Name: "Export Reports", Description: "Export reports to various formats (PDF, Excel, etc.)", Category: CategoryReporting, Level: LevelWrite},
	{ID: PermReportsSchedule, Name: "Schedule Reports", Description: "Set up automated report generation and delivery", Category: CategoryReporting, Level: LevelAdmin},

	{ID: PermSystemSettings, Name: "System Settings", Description: "Access and modify system configuration", Category: CategorySystem, Level: LevelAdmin},
	{ID: PermSystemBackup, Name: "System Backup", Description: "Create and manage system backups", Category: CategorySystem, Level: LevelAdmin},
	{ID: PermSystemLogs, Name: "View System Logs", Description: "Access system logs and audit trails", Category: CategorySystem, Level: LevelRead},
	{ID: PermSystemMaintenance, Name: "System Maintenance", Description: "Perform system maintenance tasks", Category: CategorySystem, Level: LevelAdmin},

	{ID: PermTimeclockView, Name: "View Time Records", Description: "View employee time clock records", Category: CategoryTimeClock, Level: LevelRead},
	{ID: PermTimeclockEdit, Name: "Edit Time Records", Description: "Modify employee time clock entries", Category: CategoryTimeClock, Level: LevelWrite},
	{ID: PermTimeclockApprove, Name: "Approve Timesheets", Description: "Approve or reject employee timesheets", Category: CategoryTimeClock, Level: LevelWrite},
	{ID: PermTimeclockSettings, Name: "Time Clock Settings", Description: "Configure time clock rules and policies", Category: CategoryTimeClock, Level: LevelAdmin},

	{ID: PermPayrollView, Name: "View Payroll", Description: "Access payroll information and records", Category: CategoryPayroll, Level: LevelRead},
	{ID: PermPayrollProcess, Name: "Process Payroll", Description: "Run payroll calculations and processing", Category: CategoryPayroll, Level: LevelWrite},
	{ID: PermPayrollApprove, Name: "Approve Payroll", Description: "Final approval for payroll processing", Category: CategoryPayroll, Level: LevelAdmin},
	{ID: PermPayrollReports, Name: "Payroll Reports", Description: "Generate and access payroll reports", Category: CategoryPayroll, Level: LevelRead},

	{ID: PermHRDocuments, Name: "HR Documents", Description: "Access and manage employee documents", Category: CategoryHR, Level: LevelWrite},
	{ID: PermHRBenefits, Name: "Manage Benefits", Description: "Administer employee benefits and enrollment", Category: CategoryHR, Level: LevelWrite},
	{ID: PermHRPerformance, Name: "Performance Reviews", Description: "Conduct and manage employee performance reviews", Category: CategoryHR, Level: LevelWrite},
	{ID: PermHRCompliance, Name: "HR Compliance", Description: "Manage HR compliance and regulatory requirements", Category: CategoryHR, Level: LevelAdmin},
}

// PermissionCatalog returns a copy of the fixed permission catalog.
func PermissionCatalog() []Permission {
	out := make([]Permission, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

func LookupPermission(id string) (Permission, bool) {
	for _, perm := range permissionCatalog {
		if perm.ID == id {
			return perm, true
		}
	}
	return Permission{}, false
}

// PermissionGroup is one category of the catalog with its permissions in
// catalog order.
type PermissionGroup struct {
	Category    PermissionCategory `json:"category"`
	Permissions []Permission       `json:"permissions"`
}

func PermissionsByCategory(perms []Permission) []PermissionGroup {
	index := map[PermissionCategory]int{}
	var out []PermissionGroup
	for _, perm := range perms {
		pos, ok := index[perm.Category]
		if !ok {
			pos = len(out)
			index[perm.Category] = pos
			out = append(out, PermissionGroup{Category: perm.Category})
		}
		out[pos].Permissions = append(out[pos].Permissions, perm)
	}
	return out
}
