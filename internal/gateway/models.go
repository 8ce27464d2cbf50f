package gateway

import "time"

// DatabaseStatus is the lifecycle status reported for a database.
type DatabaseStatus string

const (
	DatabasePending      DatabaseStatus = "PENDING"
	DatabaseInitializing DatabaseStatus = "INITIALIZING"
	DatabaseActive       DatabaseStatus = "ACTIVE"
	DatabaseMaintenance  DatabaseStatus = "MAINTENANCE"
	DatabaseHibernated   DatabaseStatus = "HIBERNATED"
	DatabaseTerminating  DatabaseStatus = "TERMINATING"
	DatabaseTerminated   DatabaseStatus = "TERMINATED"
	DatabaseError        DatabaseStatus = "ERROR"
)

// Database is a managed database.
type Database struct {
	ID        string
	Name      string
	Status    DatabaseStatus
	Cloud     string
	Regions   []string
	Keyspaces []string
	Vector    bool
	CreatedAt time.Time
}

// DatabaseSpec describes a database to create.
type DatabaseSpec struct {
	Name     string
	Region   string
	Cloud    string
	Keyspace string
	Vector   bool
}

// TenantPlan is the billing plan of a streaming tenant.
type TenantPlan string

const (
	PlanServerless TenantPlan = "serverless"
	PlanDedicated  TenantPlan = "dedicated"
)

// Tenant is a streaming tenant.
type Tenant struct {
	Name      string     `json:"tenantName"`
	Cloud     string     `json:"cloudProvider"`
	Region    string     `json:"cloudRegion"`
	Plan      TenantPlan `json:"plan"`
	Cluster   string     `json:"clusterName"`
	Status    string     `json:"status"`
	Email     string     `json:"userEmail"`
	BrokerURL string     `json:"brokerServiceUrl"`
}

// TenantSpec describes a streaming tenant to create.
type TenantSpec struct {
	Name    string
	Cloud   string
	Region  string
	Plan    TenantPlan
	Cluster string
	Email   string
}

// User is an organization member.
type User struct {
	ID     string
	Email  string
	Status string
	Roles  []string
}

// Role is an organization role.
type Role struct {
	ID          string
	Name        string
	Description string
	Policies    []string
}

// RoleSpec describes a role to create.
type RoleSpec struct {
	Name        string
	Description string
	Policies    []string
}

// Token is an application token. Secret and Value are only set right after
// creation.
type Token struct {
	ClientID    string    `json:"clientId"`
	Roles       []string  `json:"roles"`
	GeneratedOn time.Time `json:"generatedOn"`
	Secret      string    `json:"secret,omitempty"`
	Value       string    `json:"token,omitempty"`
}
