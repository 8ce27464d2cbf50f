package fake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

// Cloud is an in-memory implementation of every resource gateway. Databases
// move through their lifecycle as they are read: a new database becomes
// ACTIVE, and a terminating one disappears, after a configurable number of
// reads.
type Cloud struct {
	mu sync.Mutex

	databases []gateway.Database
	tenants   []gateway.Tenant
	users     []gateway.User
	roles     []gateway.Role
	tokens    []gateway.Token

	// countdown of reads until a database leaves PENDING or TERMINATING
	transitions map[string]int

	// ReadsToActive is the number of reads a new database stays PENDING.
	ReadsToActive int
	// ReadsToTerminated is the number of reads a database stays TERMINATING.
	ReadsToTerminated int
	// Err, when set, is returned by every call.
	Err error

	mutations int
	calls     int
}

// NewCloud creates an empty cloud where databases settle after one read.
func NewCloud() *Cloud {
	return &Cloud{
		transitions:       map[string]int{},
		ReadsToActive:     1,
		ReadsToTerminated: 1,
	}
}

// Gateways returns gateways backed by c.
func (c *Cloud) Gateways() gateway.Set {
	return gateway.Set{
		Databases: databases{c},
		Tenants:   tenants{c},
		Users:     users{c},
		Roles:     roles{c},
		Tokens:    tokens{c},
	}
}

// Mutations returns the number of create and delete calls that changed state.
func (c *Cloud) Mutations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutations
}

// Calls returns the number of gateway calls made.
func (c *Cloud) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// AddDatabase seeds a database and returns it.
func (c *Cloud) AddDatabase(name string, status gateway.DatabaseStatus) gateway.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	db := gateway.Database{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    status,
		Cloud:     "GCP",
		Regions:   []string{"us-east1"},
		Keyspaces: []string{"default_keyspace"},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	c.databases = append(c.databases, db)
	return db
}

// AddTenant seeds a streaming tenant.
func (c *Cloud) AddTenant(t gateway.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenants = append(c.tenants, t)
}

// AddUser seeds a user. An empty id is generated.
func (c *Cloud) AddUser(u gateway.User) gateway.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	c.users = append(c.users, u)
	return u
}

// AddRole seeds a role. An empty id is generated.
func (c *Cloud) AddRole(r gateway.Role) gateway.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	c.roles = append(c.roles, r)
	return r
}

// AddToken seeds a token.
func (c *Cloud) AddToken(t gateway.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = append(c.tokens, t)
}

// begin locks c and counts the call. The caller must unlock.
func (c *Cloud) begin(ctx context.Context) error {
	c.mu.Lock()
	c.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Err
}

// settle advances the lifecycle of every database by one read.
func (c *Cloud) settle() {
	kept := c.databases[:0]
	for _, db := range c.databases {
		if n, ok := c.transitions[db.ID]; ok {
			if n > 0 {
				c.transitions[db.ID] = n - 1
			} else {
				delete(c.transitions, db.ID)
				switch db.Status {
				case gateway.DatabasePending:
					db.Status = gateway.DatabaseActive
				case gateway.DatabaseTerminating:
					continue
				}
			}
		}
		kept = append(kept, db)
	}
	c.databases = kept
}

func remove[T any](items []T, match func(T) bool) ([]T, bool) {
	for i, it := range items {
		if match(it) {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

type databases struct{ c *Cloud }

func (g databases) FindAll(ctx context.Context) ([]gateway.Database, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return nil, err
	}
	g.c.settle()
	return append([]gateway.Database(nil), g.c.databases...), nil
}

func (g databases) FindOne(ctx context.Context, ref string) (gateway.Database, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return gateway.Database{}, err
	}
	g.c.settle()
	return g.c.findDatabase(ref)
}

func (c *Cloud) findDatabase(ref string) (gateway.Database, error) {
	db, ok := gateway.FindFirst(c.databases, ref, gateway.MatchDatabase)
	if !ok {
		return gateway.Database{}, &gateway.NotFoundError{Kind: "database", Ref: ref}
	}
	return db, nil
}

func (g databases) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (g databases) Create(ctx context.Context, spec gateway.DatabaseSpec) (outcome.CreationStatus[gateway.Database], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.CreationStatus[gateway.Database]{}, err
	}
	if db, err := g.c.findDatabase(spec.Name); err == nil {
		return outcome.AlreadyExistsStatus(db), nil
	}

	keyspace := spec.Keyspace
	if keyspace == "" {
		keyspace = "default_keyspace"
	}
	db := gateway.Database{
		ID:        uuid.NewString(),
		Name:      spec.Name,
		Status:    gateway.DatabasePending,
		Cloud:     spec.Cloud,
		Regions:   []string{spec.Region},
		Keyspaces: []string{keyspace},
		Vector:    spec.Vector,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	g.c.databases = append(g.c.databases, db)
	g.c.transitions[db.ID] = g.c.ReadsToActive
	g.c.mutations++
	return outcome.CreatedStatus(db), nil
}

func (g databases) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	for i := range g.c.databases {
		db := &g.c.databases[i]
		if gateway.MatchDatabase(*db, ref) {
			db.Status = gateway.DatabaseTerminating
			g.c.transitions[db.ID] = g.c.ReadsToTerminated
			g.c.mutations++
			return outcome.DeletedStatus(db.ID), nil
		}
	}
	return outcome.NotFoundStatus(ref), nil
}

type tenants struct{ c *Cloud }

func matchTenant(t gateway.Tenant, name string) bool { return t.Name == name }

func (g tenants) FindAll(ctx context.Context) ([]gateway.Tenant, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return nil, err
	}
	return append([]gateway.Tenant(nil), g.c.tenants...), nil
}

func (g tenants) FindOne(ctx context.Context, name string) (gateway.Tenant, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return gateway.Tenant{}, err
	}
	t, ok := gateway.FindFirst(g.c.tenants, name, matchTenant)
	if !ok {
		return gateway.Tenant{}, &gateway.NotFoundError{Kind: "tenant", Ref: name}
	}
	return t, nil
}

func (g tenants) Exists(ctx context.Context, name string) (bool, error) {
	_, err := g.FindOne(ctx, name)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (g tenants) Create(ctx context.Context, spec gateway.TenantSpec) (outcome.CreationStatus[gateway.Tenant], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.CreationStatus[gateway.Tenant]{}, err
	}
	if t, ok := gateway.FindFirst(g.c.tenants, spec.Name, matchTenant); ok {
		return outcome.AlreadyExistsStatus(t), nil
	}
	t := gateway.Tenant{
		Name:    spec.Name,
		Cloud:   spec.Cloud,
		Region:  spec.Region,
		Plan:    spec.Plan,
		Cluster: spec.Cluster,
		Email:   spec.Email,
		Status:  "active",
	}
	g.c.tenants = append(g.c.tenants, t)
	g.c.mutations++
	return outcome.CreatedStatus(t), nil
}

func (g tenants) Delete(ctx context.Context, name string) (outcome.DeletionStatus[string], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	var ok bool
	g.c.tenants, ok = remove(g.c.tenants, func(t gateway.Tenant) bool { return t.Name == name })
	if !ok {
		return outcome.NotFoundStatus(name), nil
	}
	g.c.mutations++
	return outcome.DeletedStatus(name), nil
}

type users struct{ c *Cloud }

func (g users) FindAll(ctx context.Context) ([]gateway.User, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return nil, err
	}
	return append([]gateway.User(nil), g.c.users...), nil
}

func (g users) FindOne(ctx context.Context, ref string) (gateway.User, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return gateway.User{}, err
	}
	u, ok := gateway.FindFirst(g.c.users, ref, gateway.MatchUser)
	if !ok {
		return gateway.User{}, &gateway.NotFoundError{Kind: "user", Ref: ref}
	}
	return u, nil
}

func (g users) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (g users) Invite(ctx context.Context, email string, roles []string) (outcome.CreationStatus[gateway.User], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.CreationStatus[gateway.User]{}, err
	}
	if u, ok := gateway.FindFirst(g.c.users, email, gateway.MatchUser); ok {
		return outcome.AlreadyExistsStatus(u), nil
	}
	for _, r := range roles {
		if _, ok := gateway.FindFirst(g.c.roles, r, gateway.MatchRole); !ok {
			return outcome.CreationStatus[gateway.User]{}, &gateway.NotFoundError{Kind: "role", Ref: r}
		}
	}
	u := gateway.User{ID: uuid.NewString(), Email: email, Status: "invited", Roles: roles}
	g.c.users = append(g.c.users, u)
	g.c.mutations++
	return outcome.CreatedStatus(u), nil
}

func (g users) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	u, ok := gateway.FindFirst(g.c.users, ref, gateway.MatchUser)
	if !ok {
		return outcome.NotFoundStatus(ref), nil
	}
	g.c.users, _ = remove(g.c.users, func(x gateway.User) bool { return x.ID == u.ID })
	g.c.mutations++
	return outcome.DeletedStatus(u.ID), nil
}

type roles struct{ c *Cloud }

func (g roles) FindAll(ctx context.Context) ([]gateway.Role, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return nil, err
	}
	return append([]gateway.Role(nil), g.c.roles...), nil
}

func (g roles) FindOne(ctx context.Context, ref string) (gateway.Role, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return gateway.Role{}, err
	}
	r, ok := gateway.FindFirst(g.c.roles, ref, gateway.MatchRole)
	if !ok {
		return gateway.Role{}, &gateway.NotFoundError{Kind: "role", Ref: ref}
	}
	return r, nil
}

func (g roles) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (g roles) Create(ctx context.Context, spec gateway.RoleSpec) (outcome.CreationStatus[gateway.Role], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.CreationStatus[gateway.Role]{}, err
	}
	if r, ok := gateway.FindFirst(g.c.roles, spec.Name, gateway.MatchRole); ok {
		return outcome.AlreadyExistsStatus(r), nil
	}
	r := gateway.Role{ID: uuid.NewString(), Name: spec.Name, Description: spec.Description, Policies: spec.Policies}
	g.c.roles = append(g.c.roles, r)
	g.c.mutations++
	return outcome.CreatedStatus(r), nil
}

func (g roles) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	r, ok := gateway.FindFirst(g.c.roles, ref, gateway.MatchRole)
	if !ok {
		return outcome.NotFoundStatus(ref), nil
	}
	g.c.roles, _ = remove(g.c.roles, func(x gateway.Role) bool { return x.ID == r.ID })
	g.c.mutations++
	return outcome.DeletedStatus(r.ID), nil
}

type tokens struct{ c *Cloud }

func (g tokens) FindAll(ctx context.Context) ([]gateway.Token, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return nil, err
	}
	return append([]gateway.Token(nil), g.c.tokens...), nil
}

func (g tokens) Exists(ctx context.Context, clientID string) (bool, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return false, err
	}
	_, ok := gateway.FindFirst(g.c.tokens, clientID, func(t gateway.Token, ref string) bool { return t.ClientID == ref })
	return ok, nil
}

func (g tokens) Create(ctx context.Context, roles []string) (gateway.Token, error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return gateway.Token{}, err
	}
	for _, r := range roles {
		if _, ok := gateway.FindFirst(g.c.roles, r, gateway.MatchRole); !ok {
			return gateway.Token{}, &gateway.NotFoundError{Kind: "role", Ref: r}
		}
	}
	t := gateway.Token{
		ClientID:    uuid.NewString(),
		Roles:       roles,
		GeneratedOn: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Secret:      "secret-" + uuid.NewString(),
		Value:       "AstraCS:" + uuid.NewString(),
	}
	stored := t
	stored.Secret, stored.Value = "", ""
	g.c.tokens = append(g.c.tokens, stored)
	g.c.mutations++
	return t, nil
}

func (g tokens) Delete(ctx context.Context, clientID string) (outcome.DeletionStatus[string], error) {
	defer g.c.mu.Unlock()
	if err := g.c.begin(ctx); err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	var ok bool
	g.c.tokens, ok = remove(g.c.tokens, func(t gateway.Token) bool { return t.ClientID == clientID })
	if !ok {
		return outcome.NotFoundStatus(clientID), nil
	}
	g.c.mutations++
	return outcome.DeletedStatus(clientID), nil
}
