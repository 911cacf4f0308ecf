package directory

import "time"

// Seed ids are stable so operator accounts can point at a seed user.
const (
	SeedRoleAdministrator = "role-admin"
	SeedRoleManager       = "role-manager"
	SeedRoleEmployee      = "role-employee"
	SeedRoleHR            = "role-hr"
	SeedRolePayroll       = "role-payroll"

	SeedUserAdmin = "user-1"
)

var seedEpoch = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func SeedRoles() []Role {
	all := make([]string, 0, len(permissionCatalog))
	for _, perm := range permissionCatalog {
		all = append(all, perm.ID)
	}
	return []Role{
		{
			ID:          SeedRoleAdministrator,
			Name:        "Administrator",
			Description: "Full access to every area of the system",
			Permissions: all,
			Color:       "#dc2626",
			CreatedAt:   seedEpoch,
		},
		{
			ID:          SeedRoleManager,
			Name:        "Manager",
			Description: "Manages a team, approves timesheets and reviews reports",
			Permissions: []string{
				PermUserView, PermUserEdit, PermReportsView, PermReportsCreate, PermReportsExport,
				PermTimeclockView, PermTimeclockApprove, PermHRPerformance,
			},
			Color:     "#2563eb",
			CreatedAt: seedEpoch,
		},
		{
			ID:          SeedRoleEmployee,
			Name:        "Employee",
			Description: "Standard employee access",
			Permissions: []string{PermUserView, PermTimeclockView},
			Color:       "#16a34a",
			CreatedAt:   seedEpoch,
		},
		{
			ID:          SeedRoleHR,
			Name:        "HR Specialist",
			Description: "Maintains employee records, documents and benefits",
			Permissions: []string{
				PermUserView, PermUserCreate, PermUserEdit, PermUserRoles, PermReportsView,
				PermHRDocuments, PermHRBenefits, PermHRPerformance, PermHRCompliance,
			},
			Color:     "#7c3aed",
			CreatedAt: seedEpoch,
		},
		{
			ID:          SeedRolePayroll,
			Name:        "Payroll Clerk",
			Description: "Processes payroll and time records",
			Permissions: []string{
				PermUserView, PermPayrollView, PermPayrollProcess, PermPayrollReports,
				PermTimeclockView, PermTimeclockEdit,
			},
			Color:     "#ca8a04",
			CreatedAt: seedEpoch,
		},
	}
}

func SeedUsers() []User {
	contact := func(first, last, email, phone, city, state string) EmergencyContact {
		return EmergencyContact{
			FirstName: first,
			LastName:  last,
			Email:     email,
			Phone:     phone,
			Address:   "100 Main Street",
			City:      city,
			State:     state,
			Country:   DefaultCountry,
		}
	}
	return []User{
		{
			ID: SeedUserAdmin, FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@company.com",
			Phone: "(555) 123-4567", Mobile: "(555) 987-6543", Address: "123 Oak Avenue", City: "Springfield",
			State: "IL", ZipCode: "62701", Country: DefaultCountry, StartDate: "2020-03-15",
			Status: StatusActive, PayType: PayTypeSalary, ClockCode: "1001",
			EmergencyContact1: contact("Michael", "Johnson", "michael.johnson@email.com", "(555) 234-5678", "Springfield", "IL"),
			EmergencyContact2: EmergencyContact{Country: DefaultCountry},
			Roles:             []string{SeedRoleAdministrator},
			CreatedAt:         seedEpoch, UpdatedAt: seedEpoch,
		},
		{
			ID: "user-2", FirstName: "David", MiddleName: "Lee", LastName: "Chen", Email: "david.chen@company.com",
			Phone: "(555) 345-6789", Address: "45 Pine Road", City: "Springfield", State: "IL", ZipCode: "62702",
			Country: DefaultCountry, StartDate: "2021-06-01", Status: StatusActive, PayType: PayTypeSalary,
			ClockCode: "1002", LimitStartTime: true,
			EmergencyContact1: contact("Lin", "Chen", "lin.chen@email.com", "(555) 456-7890", "Springfield", "IL"),
			EmergencyContact2: contact("Wei", "Chen", "wei.chen@email.com", "(555) 567-8901", "Chicago", "IL"),
			Roles:             []string{SeedRoleManager, SeedRoleEmployee},
			CreatedAt:         seedEpoch, UpdatedAt: seedEpoch,
		},
		{
			ID: "user-3", FirstName: "Maria", LastName: "Garcia", Email: "maria.garcia@company.com",
			Phone: "(555) 678-9012", Address: "78 Elm Street", City: "Decatur", State: "IL", Country: DefaultCountry,
			StartDate: "2022-01-10", Status: StatusActive, PayType: PayTypeHourly, ClockCode: "1003",
			LimitStartTime: true, LimitEndTime: true,
			EmergencyContact1: contact("Jose", "Garcia", "jose.garcia@email.com", "(555) 789-0123", "Decatur", "IL"),
			EmergencyContact2: EmergencyContact{Country: DefaultCountry},
			Roles:             []string{SeedRoleEmployee},
			CreatedAt:         seedEpoch, UpdatedAt: seedEpoch,
		},
		{
			ID: "user-4", FirstName: "James", LastName: "Wilson", Email: "james.wilson@company.com",
			Phone: "(555) 890-1234", Address: "9 Birch Lane", City: "Peoria", State: "IL", Country: DefaultCountry,
			StartDate: "2019-09-23", EndDate: "2024-02-29", Status: StatusInactive, PayType: PayTypeHourly, ClockCode: "1004",
			EmergencyContact1: contact("Emma", "Wilson", "emma.wilson@email.com", "(555) 901-2345", "Peoria", "IL"),
			EmergencyContact2: EmergencyContact{Country: DefaultCountry},
			Roles:             []string{SeedRoleEmployee, SeedRolePayroll},
			CreatedAt:         seedEpoch, UpdatedAt: seedEpoch,
		},
		{
			ID: "user-5", FirstName: "Aisha", LastName: "Brown", Email: "aisha.brown@company.com",
			Phone: "(555) 012-3456", Address: "300 Cedar Court", City: "Springfield", State: "IL", Country: DefaultCountry,
			StartDate: "2023-04-03", Status: StatusActive, PayType: PayTypeSalary, ClockCode: "1005",
			EmergencyContact1: contact("Omar", "Brown", "omar.brown@email.com", "(555) 135-7913", "Springfield", "IL"),
			EmergencyContact2: EmergencyContact{Country: DefaultCountry},
			Roles:             []string{SeedRoleHR},
			CreatedAt:         seedEpoch, UpdatedAt: seedEpoch,
		},
	}
}
